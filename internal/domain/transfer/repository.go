package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
)

// Repository defines the interface for stock transfer persistence
type Repository interface {
	// FindByID finds a transfer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransfer, error)

	// FindByNumber finds a transfer by its transfer number
	FindByNumber(ctx context.Context, number string) (*StockTransfer, error)

	// FindByStore finds transfers where the store is source or destination
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]StockTransfer, error)

	// FindAll finds transfers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StockTransfer, error)

	// Save creates or updates a transfer document
	Save(ctx context.Context, t *StockTransfer) error
}
