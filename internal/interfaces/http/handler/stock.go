package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	stockapp "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// StockHandler handles stock ledger and balance endpoints
type StockHandler struct {
	BaseHandler
	stockService *stockapp.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *stockapp.Service) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stores := rg.Group("/stores/:store_id/stock")
	{
		stores.GET("/levels", h.GetStockLevels)
		stores.GET("/low", h.GetLowStockProducts)
		stores.GET("/products/:product_id/balance", h.GetStockBalance)
		stores.GET("/products/:product_id/ledger", h.GetLedgerHistory)
		stores.GET("/products/:product_id/availability", h.CheckAvailability)
		stores.POST("/transactions", h.RecordTransaction)
	}
}

// RecordTransactionRequest is the request body for a manual ledger entry
type RecordTransactionRequest struct {
	ProductID        string  `json:"product_id" binding:"required,uuid"`
	ProductVariantID *string `json:"product_variant_id" binding:"omitempty,uuid"`
	TransactionType  string  `json:"transaction_type" binding:"required"`
	Quantity         string  `json:"quantity" binding:"required"`
	UnitCost         string  `json:"unit_cost"`
	UnitID           *string `json:"unit_id" binding:"omitempty,uuid"`
	ReferenceType    string  `json:"reference_type"`
	ReferenceID      *string `json:"reference_id" binding:"omitempty,uuid"`
	Notes            string  `json:"notes"`
	TransactionDate  *string `json:"transaction_date"`
}

// RecordTransaction appends one stock movement to the ledger
func (h *StockHandler) RecordTransaction(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "store_id")
	if !ok {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	input, err := h.buildInput(c, storeID, req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.stockService.RecordTransaction(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entry)
}

func (h *StockHandler) buildInput(c *gin.Context, storeID uuid.UUID, req RecordTransactionRequest) (stockapp.RecordTransactionInput, error) {
	var input stockapp.RecordTransactionInput

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return input, err
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return input, err
	}

	unitCost := decimal.Zero
	if req.UnitCost != "" {
		if unitCost, err = decimal.NewFromString(req.UnitCost); err != nil {
			return input, err
		}
	}

	input = stockapp.RecordTransactionInput{
		StoreID:         storeID,
		ProductID:       productID,
		TransactionType: ledger.TransactionType(req.TransactionType),
		Quantity:        quantity,
		UnitCost:        unitCost,
		Notes:           req.Notes,
	}

	if req.ProductVariantID != nil {
		variantID, err := uuid.Parse(*req.ProductVariantID)
		if err != nil {
			return input, err
		}
		input.ProductVariantID = &variantID
	}

	if req.UnitID != nil {
		unitID, err := uuid.Parse(*req.UnitID)
		if err != nil {
			return input, err
		}
		input.UnitID = &unitID
	}

	if req.ReferenceType != "" && req.ReferenceID != nil {
		refID, err := uuid.Parse(*req.ReferenceID)
		if err != nil {
			return input, err
		}
		ref, err := ledger.NewReference(ledger.ReferenceType(req.ReferenceType), refID)
		if err != nil {
			return input, err
		}
		input.Reference = &ref
	}

	if req.TransactionDate != nil {
		date, err := time.Parse(time.RFC3339, *req.TransactionDate)
		if err != nil {
			return input, err
		}
		input.TransactionDate = &date
	}

	if actorID, err := getActorID(c); err == nil {
		input.UserID = &actorID
	}

	return input, nil
}

// GetStockBalance returns the current balance for one stock key
func (h *StockHandler) GetStockBalance(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "store_id")
	if !ok {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	variantID, err := parseOptionalUUIDQuery(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	balance, err := h.stockService.GetStockBalance(c.Request.Context(), storeID, productID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// CheckAvailability reports whether a store can cover a required quantity
func (h *StockHandler) CheckAvailability(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "store_id")
	if !ok {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	quantity, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil || quantity.LessThanOrEqual(decimal.Zero) {
		h.BadRequest(c, "quantity must be a positive number")
		return
	}

	variantID, err := parseOptionalUUIDQuery(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}
	unitID, err := parseOptionalUUIDQuery(c, "unit_id")
	if err != nil {
		h.BadRequest(c, "Invalid unit ID")
		return
	}

	available, err := h.stockService.HasAvailableStock(c.Request.Context(), storeID, productID, quantity, variantID, unitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"available": available})
}

// GetLedgerHistory lists the ledger rows for one stock key
func (h *StockHandler) GetLedgerHistory(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "store_id")
	if !ok {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	variantID, err := parseOptionalUUIDQuery(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}
	filter := toFilter(req)

	entries, total, err := h.stockService.GetLedgerHistory(c.Request.Context(), storeID, productID, variantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// GetStockLevels lists the latest balance of every stock key in a store
func (h *StockHandler) GetStockLevels(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "store_id")
	if !ok {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	levels, err := h.stockService.GetStockLevels(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, levels)
}

// GetLowStockProducts lists products at or below their reorder level
func (h *StockHandler) GetLowStockProducts(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "store_id")
	if !ok {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	items, err := h.stockService.GetLowStockProducts(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}
