package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	stockapp "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// GoodsReceiptHandler handles purchase-order goods receipt endpoints
type GoodsReceiptHandler struct {
	BaseHandler
	receiptService *stockapp.GoodsReceiptService
}

// NewGoodsReceiptHandler creates a new GoodsReceiptHandler
func NewGoodsReceiptHandler(receiptService *stockapp.GoodsReceiptService) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{receiptService: receiptService}
}

// RegisterRoutes registers all goods receipt routes
func (h *GoodsReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/goods-receipts")
	{
		receipts.POST("", h.ReceiveGoods)
		receipts.GET("/:id", h.GetGoodsReceipt)
	}
	rg.GET("/stores/:store_id/goods-receipts", h.ListGoodsReceipts)
}

// GoodsReceiptLineRequest is one received line. UnitCost is in the line's
// transacted unit, not per base unit.
type GoodsReceiptLineRequest struct {
	ProductID        string  `json:"product_id" binding:"required,uuid"`
	ProductVariantID *string `json:"product_variant_id" binding:"omitempty,uuid"`
	UnitID           *string `json:"unit_id" binding:"omitempty,uuid"`
	QuantityOrdered  string  `json:"quantity_ordered" binding:"required"`
	QuantityReceived string  `json:"quantity_received" binding:"required"`
	UnitCost         string  `json:"unit_cost" binding:"required"`
}

// ReceiveGoodsRequest is the request body for recording a goods receipt
type ReceiveGoodsRequest struct {
	PurchaseOrderID string                    `json:"purchase_order_id" binding:"required,uuid"`
	StoreID         string                    `json:"store_id" binding:"required,uuid"`
	ReceivedDate    *string                   `json:"received_date"`
	Lines           []GoodsReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
	Notes           string                    `json:"notes"`
}

// ReceiveGoods records a goods receipt against a purchase order
func (h *GoodsReceiptHandler) ReceiveGoods(c *gin.Context) {
	var req ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "X-Actor-ID header is required")
		return
	}

	purchaseOrderID, err := uuid.Parse(req.PurchaseOrderID)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	receivedDate := time.Now()
	if req.ReceivedDate != nil {
		if receivedDate, err = time.Parse(time.RFC3339, *req.ReceivedDate); err != nil {
			h.BadRequest(c, "Invalid received date")
			return
		}
	}

	lines := make([]stockapp.GoodsReceiptLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		input, err := parseGoodsReceiptLine(line)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		lines = append(lines, input)
	}

	grn, err := h.receiptService.ReceiveGoods(c.Request.Context(), stockapp.ReceiveGoodsInput{
		PurchaseOrderID: purchaseOrderID,
		StoreID:         storeID,
		ReceivedDate:    receivedDate,
		Lines:           lines,
		Notes:           req.Notes,
		UserID:          actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, grn)
}

func parseGoodsReceiptLine(line GoodsReceiptLineRequest) (stockapp.GoodsReceiptLineInput, error) {
	var input stockapp.GoodsReceiptLineInput

	productID, err := uuid.Parse(line.ProductID)
	if err != nil {
		return input, err
	}
	ordered, err := decimal.NewFromString(line.QuantityOrdered)
	if err != nil {
		return input, err
	}
	received, err := decimal.NewFromString(line.QuantityReceived)
	if err != nil {
		return input, err
	}
	unitCost, err := decimal.NewFromString(line.UnitCost)
	if err != nil {
		return input, err
	}

	input = stockapp.GoodsReceiptLineInput{
		ProductID:        productID,
		QuantityOrdered:  ordered,
		QuantityReceived: received,
		UnitCost:         unitCost,
	}

	if line.ProductVariantID != nil {
		variantID, err := uuid.Parse(*line.ProductVariantID)
		if err != nil {
			return input, err
		}
		input.ProductVariantID = &variantID
	}
	if line.UnitID != nil {
		unitID, err := uuid.Parse(*line.UnitID)
		if err != nil {
			return input, err
		}
		input.UnitID = &unitID
	}

	return input, nil
}

// GetGoodsReceipt returns one GRN with its lines
func (h *GoodsReceiptHandler) GetGoodsReceipt(c *gin.Context) {
	grnID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid goods receipt ID")
		return
	}

	grn, err := h.receiptService.GetGoodsReceipt(c.Request.Context(), grnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grn)
}

// ListGoodsReceipts lists the GRNs received into a store
func (h *GoodsReceiptHandler) ListGoodsReceipts(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "store_id")
	if !ok {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	grns, err := h.receiptService.ListGoodsReceipts(c.Request.Context(), storeID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grns)
}
