package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GRNRepository defines the interface for goods received note persistence
type GRNRepository interface {
	// FindByID finds a GRN (with lines) by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceivedNote, error)

	// FindByPurchaseOrder finds all GRNs for a purchase order
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]GoodsReceivedNote, error)

	// FindByStore finds GRNs received into a store
	FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]GoodsReceivedNote, error)

	// Save creates or updates a GRN with its lines
	Save(ctx context.Context, grn *GoodsReceivedNote) error
}
