package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/adjustment"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/procurement"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/store"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// PostgreSQL error codes that mean the transaction lost a concurrency race
// and is safe to retry as a whole.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// ledgerTxOptions opens every scope transaction at SERIALIZABLE. Row locks
// alone cannot keep the balance chain consistent at READ COMMITTED: a key
// with no ledger rows yet has nothing to lock, and a writer unblocked by a
// concurrent commit still reads the latest row from its pre-commit snapshot.
// At SERIALIZABLE the losing writer fails with 40001 instead of chaining off
// a stale balance.
var ledgerTxOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}

// GormTransactionScope implements the stock TransactionScope using GORM
// transactions. Serialization failures and deadlocks are mapped to
// shared.ErrConcurrencyConflict so the application layer can retry.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a serializable database
// transaction. If the function returns an error the transaction is rolled
// back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}, ledgerTxOptions)
	if isConcurrencyConflict(err) {
		return shared.ErrConcurrencyConflict
	}
	return err
}

// isConcurrencyConflict reports whether err is a retryable transaction
// failure (serialization failure or deadlock).
func isConcurrencyConflict(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgSerializationFailure ||
			string(pqErr.Code) == pgDeadlockDetected
	}
	return false
}

// gormTransactionalRepositories provides access to all repositories within
// one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Ledger() ledger.EntryRepository {
	return NewGormStockLedgerRepository(r.tx)
}

func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Variants() catalog.ProductVariantRepository {
	return NewGormProductVariantRepository(r.tx)
}

func (r *gormTransactionalRepositories) Units() catalog.UnitRepository {
	return NewGormUnitRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductUnits() catalog.ProductUnitRepository {
	return NewGormProductUnitRepository(r.tx)
}

func (r *gormTransactionalRepositories) PriceHistory() catalog.PriceHistoryRepository {
	return NewGormPriceHistoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) Transfers() transfer.Repository {
	return NewGormStockTransferRepository(r.tx)
}

func (r *gormTransactionalRepositories) GRNs() procurement.GRNRepository {
	return NewGormGRNRepository(r.tx)
}

func (r *gormTransactionalRepositories) Adjustments() adjustment.Repository {
	return NewGormStockAdjustmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Stores() store.Repository {
	return NewGormStoreRepository(r.tx)
}

var _ appstock.TransactionScope = (*GormTransactionScope)(nil)
var _ appstock.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
