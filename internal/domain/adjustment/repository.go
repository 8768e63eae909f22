package adjustment

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
)

// Repository defines the interface for stock adjustment persistence
type Repository interface {
	// FindByID finds an adjustment (with lines) by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockAdjustment, error)

	// FindByStore finds adjustments made in a store
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]StockAdjustment, error)

	// Save creates or updates an adjustment with its lines
	Save(ctx context.Context, adj *StockAdjustment) error
}
