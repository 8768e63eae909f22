package catalog

import (
	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductVariant represents a sellable variation of a product (e.g., size or
// colour). Variants share the product's base unit and valuation method but
// carry their own prices; the stock ledger keys on (store, product, variant).
type ProductVariant struct {
	shared.BaseEntity
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	IsActive     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}

// NewProductVariant creates a new variant for a product
func NewProductVariant(productID uuid.UUID, sku, name string) (*ProductVariant, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Variant SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT_NAME", "Variant name cannot be empty")
	}
	return &ProductVariant{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		SKU:          sku,
		Name:         name,
		CostPrice:    decimal.Zero,
		SellingPrice: decimal.Zero,
		IsActive:     true,
	}, nil
}

// UpdateCostPrice sets a new cost price
func (v *ProductVariant) UpdateCostPrice(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	v.CostPrice = cost
	return nil
}
