package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	stockapp "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// TransferHandler handles inter-store stock transfer endpoints
type TransferHandler struct {
	BaseHandler
	transferService *stockapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *stockapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// RegisterRoutes registers all transfer routes
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.CreateTransfer)
		transfers.GET("", h.ListTransfers)
		transfers.GET("/:id", h.GetTransfer)
		transfers.GET("/:id/items", h.GetTransferItems)
		transfers.POST("/:id/approve", h.ApproveTransfer)
		transfers.POST("/:id/receive", h.ReceiveTransfer)
	}
}

// TransferLineRequest is one product line on a transfer request
type TransferLineRequest struct {
	ProductID        string  `json:"product_id" binding:"required,uuid"`
	ProductVariantID *string `json:"product_variant_id" binding:"omitempty,uuid"`
	Quantity         string  `json:"quantity" binding:"required"`
	UnitCost         *string `json:"unit_cost"`
}

// CreateTransferRequest is the request body for dispatching a transfer
type CreateTransferRequest struct {
	FromStoreID  string                `json:"from_store_id" binding:"required,uuid"`
	ToStoreID    string                `json:"to_store_id" binding:"required,uuid"`
	TransferDate *string               `json:"transfer_date"`
	Lines        []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
	Notes        string                `json:"notes"`
}

// CreateTransfer dispatches stock from the source store
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "X-Actor-ID header is required")
		return
	}

	fromStoreID, err := uuid.Parse(req.FromStoreID)
	if err != nil {
		h.BadRequest(c, "Invalid source store ID")
		return
	}
	toStoreID, err := uuid.Parse(req.ToStoreID)
	if err != nil {
		h.BadRequest(c, "Invalid destination store ID")
		return
	}

	transferDate := time.Now()
	if req.TransferDate != nil {
		if transferDate, err = time.Parse(time.RFC3339, *req.TransferDate); err != nil {
			h.BadRequest(c, "Invalid transfer date")
			return
		}
	}

	lines := make([]stockapp.TransferLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		input, err := parseTransferLine(line)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		lines = append(lines, input)
	}

	doc, err := h.transferService.CreateTransfer(c.Request.Context(), stockapp.CreateTransferInput{
		FromStoreID:  fromStoreID,
		ToStoreID:    toStoreID,
		TransferDate: transferDate,
		Lines:        lines,
		Notes:        req.Notes,
		UserID:       actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

func parseTransferLine(line TransferLineRequest) (stockapp.TransferLineInput, error) {
	var input stockapp.TransferLineInput

	productID, err := uuid.Parse(line.ProductID)
	if err != nil {
		return input, err
	}
	quantity, err := decimal.NewFromString(line.Quantity)
	if err != nil {
		return input, err
	}

	input = stockapp.TransferLineInput{
		ProductID: productID,
		Quantity:  quantity,
	}

	if line.ProductVariantID != nil {
		variantID, err := uuid.Parse(*line.ProductVariantID)
		if err != nil {
			return input, err
		}
		input.ProductVariantID = &variantID
	}
	if line.UnitCost != nil {
		cost, err := decimal.NewFromString(*line.UnitCost)
		if err != nil {
			return input, err
		}
		input.UnitCost = &cost
	}

	return input, nil
}

// GetTransfer returns one transfer document
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	doc, err := h.transferService.GetTransfer(c.Request.Context(), transferID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// ListTransfers lists transfer documents, optionally narrowed to a store
func (h *TransferHandler) ListTransfers(c *gin.Context) {
	storeID, err := parseOptionalUUIDQuery(c, "store_id")
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	transfers, err := h.transferService.ListTransfers(c.Request.Context(), storeID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transfers)
}

// GetTransferItems returns the dispatched ledger rows of a transfer
func (h *TransferHandler) GetTransferItems(c *gin.Context) {
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	items, err := h.transferService.GetTransferItems(c.Request.Context(), transferID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// ApproveTransfer marks a pending transfer as in transit
func (h *TransferHandler) ApproveTransfer(c *gin.Context) {
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "X-Actor-ID header is required")
		return
	}

	doc, err := h.transferService.ApproveTransfer(c.Request.Context(), transferID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// ReceiveTransferRequest is the request body for completing a transfer
type ReceiveTransferRequest struct {
	ReceivedDate *string `json:"received_date"`
	Notes        string  `json:"notes"`
}

// ReceiveTransfer credits the destination store with the dispatched stock
func (h *TransferHandler) ReceiveTransfer(c *gin.Context) {
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "X-Actor-ID header is required")
		return
	}

	var req ReceiveTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	receivedDate := time.Now()
	if req.ReceivedDate != nil {
		if receivedDate, err = time.Parse(time.RFC3339, *req.ReceivedDate); err != nil {
			h.BadRequest(c, "Invalid received date")
			return
		}
	}

	doc, err := h.transferService.ReceiveTransfer(c.Request.Context(), stockapp.ReceiveTransferInput{
		TransferID:   transferID,
		ReceivedDate: receivedDate,
		Notes:        req.Notes,
		UserID:       actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}
