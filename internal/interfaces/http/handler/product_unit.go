package handler

import (
	"github.com/gin-gonic/gin"

	stockapp "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/catalog"
)

// ProductUnitHandler exposes the units a product can be transacted in
type ProductUnitHandler struct {
	BaseHandler
	stockService *stockapp.Service
}

// NewProductUnitHandler creates a new ProductUnitHandler
func NewProductUnitHandler(stockService *stockapp.Service) *ProductUnitHandler {
	return &ProductUnitHandler{stockService: stockService}
}

// RegisterRoutes registers product unit routes
func (h *ProductUnitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products/:product_id/units", h.GetAvailableUnits)
}

// GetAvailableUnits lists the unit options for a product. The optional
// usage query narrows the list to purchase or sale units.
func (h *ProductUnitHandler) GetAvailableUnits(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	usage := catalog.UnitUsageAll
	switch c.Query("usage") {
	case "":
	case string(catalog.UnitUsagePurchase):
		usage = catalog.UnitUsagePurchase
	case string(catalog.UnitUsageSale):
		usage = catalog.UnitUsageSale
	default:
		h.BadRequest(c, "usage must be purchase or sale")
		return
	}

	options, err := h.stockService.GetAvailableUnits(c.Request.Context(), productID, usage)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, options)
}
