package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceChangeSource identifies what caused a price change
type PriceChangeSource string

const (
	PriceChangeSourceGoodsReceipt PriceChangeSource = "goods_receipt"
	PriceChangeSourceManual       PriceChangeSource = "manual"
)

// ProductPriceHistory is an append-only record of a product or variant price
// change. Written whenever master-data prices are rewritten, in particular by
// the goods-receipt cost feedback loop.
type ProductPriceHistory struct {
	shared.BaseEntity
	ProductID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductVariantID *uuid.UUID        `gorm:"type:uuid;index"`
	StoreID          *uuid.UUID        `gorm:"type:uuid"`
	OldCostPrice     decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	NewCostPrice     decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	OldSellingPrice  decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	NewSellingPrice  decimal.Decimal   `gorm:"type:decimal(15,2);not null"`
	Source           PriceChangeSource `gorm:"type:varchar(30);not null"`
	ReferenceType    string            `gorm:"type:varchar(50)"`
	ReferenceID      *uuid.UUID        `gorm:"type:uuid"`
	Notes            string            `gorm:"type:text"`
	ChangedBy        *uuid.UUID        `gorm:"type:uuid"`
	ChangedAt        time.Time         `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (ProductPriceHistory) TableName() string {
	return "product_price_history"
}

// NewPriceHistory records a price transition for a product (or variant)
func NewPriceHistory(
	productID uuid.UUID,
	oldCost, newCost, oldSelling, newSelling decimal.Decimal,
	source PriceChangeSource,
) *ProductPriceHistory {
	return &ProductPriceHistory{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       productID,
		OldCostPrice:    oldCost,
		NewCostPrice:    newCost,
		OldSellingPrice: oldSelling,
		NewSellingPrice: newSelling,
		Source:          source,
		ChangedAt:       time.Now(),
	}
}

// ForVariant attaches the variant dimension
func (h *ProductPriceHistory) ForVariant(variantID uuid.UUID) *ProductPriceHistory {
	h.ProductVariantID = &variantID
	return h
}

// WithReference links the causing document
func (h *ProductPriceHistory) WithReference(refType string, refID uuid.UUID) *ProductPriceHistory {
	h.ReferenceType = refType
	h.ReferenceID = &refID
	return h
}

// WithStore attaches the store where the change originated
func (h *ProductPriceHistory) WithStore(storeID uuid.UUID) *ProductPriceHistory {
	h.StoreID = &storeID
	return h
}

// WithChangedBy attaches the acting user
func (h *ProductPriceHistory) WithChangedBy(userID uuid.UUID) *ProductPriceHistory {
	h.ChangedBy = &userID
	return h
}
