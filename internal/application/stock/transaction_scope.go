package stock

import (
	"context"

	"github.com/retailcore/backend/internal/domain/adjustment"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/procurement"
	"github.com/retailcore/backend/internal/domain/store"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the stock repositories.
// When a function is executed within a scope, all repository operations are
// part of the same database transaction and commit or roll back atomically.
// A failed ledger write must never leave a partial stock movement behind.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// Implementations must map database serialization and deadlock
	// failures to shared.ErrConcurrencyConflict so callers can retry.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories the stock
// workflows touch, scoped to one database transaction.
type TransactionalRepositories interface {
	// Ledger returns the append-only stock ledger repository
	Ledger() ledger.EntryRepository
	// Products returns the product repository
	Products() catalog.ProductRepository
	// Variants returns the product variant repository
	Variants() catalog.ProductVariantRepository
	// Units returns the unit repository
	Units() catalog.UnitRepository
	// ProductUnits returns the product unit override repository
	ProductUnits() catalog.ProductUnitRepository
	// PriceHistory returns the price history repository
	PriceHistory() catalog.PriceHistoryRepository
	// Transfers returns the stock transfer repository
	Transfers() transfer.Repository
	// GRNs returns the goods received note repository
	GRNs() procurement.GRNRepository
	// Adjustments returns the stock adjustment repository
	Adjustments() adjustment.Repository
	// Stores returns the store repository
	Stores() store.Repository
}

// NoOpTransactionScope runs the function without a real transaction. Useful
// for tests and for callers that already manage their own atomicity.
type NoOpTransactionScope struct {
	repos TransactionalRepositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over fixed repositories
func NewNoOpTransactionScope(repos TransactionalRepositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function against the fixed repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
