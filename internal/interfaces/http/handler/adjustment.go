package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	stockapp "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// AdjustmentHandler handles manual stock adjustment endpoints
type AdjustmentHandler struct {
	BaseHandler
	adjustmentService *stockapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustmentService *stockapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

// RegisterRoutes registers all adjustment routes
func (h *AdjustmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	adjustments := rg.Group("/adjustments")
	{
		adjustments.POST("", h.CreateAdjustment)
		adjustments.GET("/:id", h.GetAdjustment)
	}
	rg.GET("/stores/:store_id/adjustments", h.ListAdjustments)
}

// AdjustmentLineRequest is one corrected quantity on an adjustment request
type AdjustmentLineRequest struct {
	ProductID        string  `json:"product_id" binding:"required,uuid"`
	ProductVariantID *string `json:"product_variant_id" binding:"omitempty,uuid"`
	UnitID           *string `json:"unit_id" binding:"omitempty,uuid"`
	Reason           string  `json:"reason" binding:"required"`
	Quantity         string  `json:"quantity" binding:"required"`
	UnitCost         *string `json:"unit_cost"`
	Notes            string  `json:"notes"`
}

// CreateAdjustmentRequest is the request body for a stock adjustment
type CreateAdjustmentRequest struct {
	StoreID        string                  `json:"store_id" binding:"required,uuid"`
	AdjustmentDate *string                 `json:"adjustment_date"`
	Lines          []AdjustmentLineRequest `json:"lines" binding:"required,min=1,dive"`
	Notes          string                  `json:"notes"`
}

// CreateAdjustment records a manual stock adjustment document
func (h *AdjustmentHandler) CreateAdjustment(c *gin.Context) {
	var req CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "X-Actor-ID header is required")
		return
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	adjustmentDate := time.Now()
	if req.AdjustmentDate != nil {
		if adjustmentDate, err = time.Parse(time.RFC3339, *req.AdjustmentDate); err != nil {
			h.BadRequest(c, "Invalid adjustment date")
			return
		}
	}

	lines := make([]stockapp.AdjustmentLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		input, err := parseAdjustmentLine(line)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		lines = append(lines, input)
	}

	doc, err := h.adjustmentService.CreateAdjustment(c.Request.Context(), stockapp.CreateAdjustmentInput{
		StoreID:        storeID,
		AdjustmentDate: adjustmentDate,
		Lines:          lines,
		Notes:          req.Notes,
		UserID:         actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

func parseAdjustmentLine(line AdjustmentLineRequest) (stockapp.AdjustmentLineInput, error) {
	var input stockapp.AdjustmentLineInput

	productID, err := uuid.Parse(line.ProductID)
	if err != nil {
		return input, err
	}
	quantity, err := decimal.NewFromString(line.Quantity)
	if err != nil {
		return input, err
	}

	input = stockapp.AdjustmentLineInput{
		ProductID: productID,
		Reason:    line.Reason,
		Quantity:  quantity,
		Notes:     line.Notes,
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
	if line.UnitCost != nil {
		cost, err := decimal.NewFromString(*line.UnitCost)
		if err != nil {
			return input, err
		}
		input.UnitCost = &cost
	}

	return input, nil
}

// GetAdjustment returns one adjustment document with its lines
func (h *AdjustmentHandler) GetAdjustment(c *gin.Context) {
	adjustmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid adjustment ID")
		return
	}

	doc, err := h.adjustmentService.GetAdjustment(c.Request.Context(), adjustmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// ListAdjustments lists the adjustment documents of a store
func (h *AdjustmentHandler) ListAdjustments(c *gin.Context) {
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

	adjs, err := h.adjustmentService.ListAdjustments(c.Request.Context(), storeID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, adjs)
}
