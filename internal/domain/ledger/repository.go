package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
)

// EntryRepository defines the interface for stock ledger persistence.
// The ledger is append-only: there is no update or delete.
type EntryRepository interface {
	// FindByID finds an entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// FindLatestForKey finds the most recent entry for a stock key, by
	// insertion order. Returns shared.ErrNotFound when the key has no
	// history yet.
	FindLatestForKey(ctx context.Context, key StockKey) (*Entry, error)

	// FindLatestForKeyLocked behaves like FindLatestForKey but takes a
	// row-level write lock on the returned entry, serializing concurrent
	// read-balance-then-append sequences against the same key. Must be
	// called inside a database transaction.
	FindLatestForKeyLocked(ctx context.Context, key StockKey) (*Entry, error)

	// FindForKey lists the history for a stock key in insertion order
	FindForKey(ctx context.Context, key StockKey, filter shared.Filter) ([]Entry, error)

	// FindByReference finds the entries caused by a business document,
	// optionally narrowed to a transaction type (empty type matches all)
	FindByReference(ctx context.Context, ref Reference, txType TransactionType) ([]Entry, error)

	// FindLatestPerKeyForStore returns, for every product/variant key in a
	// store, the most recent entry. Used for stock level listings.
	FindLatestPerKeyForStore(ctx context.Context, storeID uuid.UUID) ([]Entry, error)

	// CountForKey counts history rows for a stock key
	CountForKey(ctx context.Context, key StockKey) (int64, error)

	// Create appends a new entry. Implementations must never update an
	// existing row through this interface.
	Create(ctx context.Context, entry *Entry) error
}
