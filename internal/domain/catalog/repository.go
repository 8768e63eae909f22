package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitRepository defines the interface for unit persistence
type UnitRepository interface {
	// FindByID finds a unit by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)

	// FindAll finds all units matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Unit, error)

	// Save creates or updates a unit
	Save(ctx context.Context, unit *Unit) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindActiveTracked finds all active products with inventory tracking enabled
	FindActiveTracked(ctx context.Context) ([]Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateCostPrice persists a new cost price for a product
	UpdateCostPrice(ctx context.Context, productID uuid.UUID, costPrice decimal.Decimal) error
}

// ProductVariantRepository defines the interface for product variant persistence
type ProductVariantRepository interface {
	// FindByID finds a variant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductVariant, error)

	// FindByProduct finds all variants of a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductVariant, error)

	// Save creates or updates a variant
	Save(ctx context.Context, variant *ProductVariant) error

	// UpdateCostPrice persists a new cost price for a variant
	UpdateCostPrice(ctx context.Context, variantID uuid.UUID, costPrice decimal.Decimal) error
}

// ProductUnitRepository defines the interface for product unit overrides
type ProductUnitRepository interface {
	// FindByProductAndUnit finds the override for a (product, unit) pair
	FindByProductAndUnit(ctx context.Context, productID, unitID uuid.UUID) (*ProductUnit, error)

	// FindByProduct finds all unit overrides for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductUnit, error)

	// Save creates or updates a product unit
	Save(ctx context.Context, productUnit *ProductUnit) error
}

// PriceHistoryRepository defines the interface for price history persistence.
// History rows are append-only.
type PriceHistoryRepository interface {
	// Create appends a price history record
	Create(ctx context.Context, history *ProductPriceHistory) error

	// FindByProduct finds price history for a product
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]ProductPriceHistory, error)
}
