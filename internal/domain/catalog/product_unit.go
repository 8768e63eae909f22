package catalog

import (
	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductUnit is a per-product conversion override for an alternate unit:
// one of this unit equals ConversionFactor base units of the product
// (e.g., 1 carton = 24 pcs for this particular product). Product-specific
// conversions always take priority over global Unit family conversions.
type ProductUnit struct {
	shared.BaseEntity
	ProductID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_product_unit,priority:1"`
	UnitID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_product_unit,priority:2"`
	ConversionFactor decimal.Decimal  `gorm:"type:decimal(10,4);not null"`
	SellingPrice     *decimal.Decimal `gorm:"type:decimal(15,2)"`
	CostPrice        *decimal.Decimal `gorm:"type:decimal(15,2)"`
	IsPurchaseUnit   bool             `gorm:"not null;default:false"`
	IsSaleUnit       bool             `gorm:"not null;default:false"`
	IsDefault        bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductUnit) TableName() string {
	return "product_units"
}

// NewProductUnit creates a product-specific unit conversion
func NewProductUnit(productID, unitID uuid.UUID, conversionFactor decimal.Decimal) (*ProductUnit, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if conversionFactor.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CONVERSION_FACTOR", "Conversion factor must be positive")
	}
	return &ProductUnit{
		BaseEntity:       shared.NewBaseEntity(),
		ProductID:        productID,
		UnitID:           unitID,
		ConversionFactor: conversionFactor,
	}, nil
}

// SetPrices sets the unit-specific prices
func (pu *ProductUnit) SetPrices(costPrice, sellingPrice decimal.Decimal) error {
	if costPrice.IsNegative() || sellingPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	pu.CostPrice = &costPrice
	pu.SellingPrice = &sellingPrice
	return nil
}

// ToBaseQuantity converts a quantity in this unit to base units
func (pu *ProductUnit) ToBaseQuantity(quantity decimal.Decimal) decimal.Decimal {
	return quantity.Mul(pu.ConversionFactor)
}

// FromBaseQuantity converts a base-unit quantity to this unit
func (pu *ProductUnit) FromBaseQuantity(baseQuantity decimal.Decimal) decimal.Decimal {
	return baseQuantity.Div(pu.ConversionFactor)
}
