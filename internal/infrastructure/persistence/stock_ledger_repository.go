package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormStockLedgerRepository implements ledger.EntryRepository using GORM.
// The stock_ledger table is append-only; this repository exposes no update
// or delete.
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new GormStockLedgerRepository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// FindByID finds an entry by its ID
func (r *GormStockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	var entry ledger.Entry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindLatestForKey finds the most recent entry for a stock key
func (r *GormStockLedgerRepository) FindLatestForKey(ctx context.Context, key ledger.StockKey) (*ledger.Entry, error) {
	return r.findLatest(ctx, r.db, key)
}

// FindLatestForKeyLocked finds the most recent entry for a stock key and
// takes a row-level write lock on it, so writers on a populated key queue
// here instead of aborting each other. Balance-chain consistency itself
// comes from the scope's serializable transaction; this must run inside one.
func (r *GormStockLedgerRepository) FindLatestForKeyLocked(ctx context.Context, key ledger.StockKey) (*ledger.Entry, error) {
	return r.findLatest(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), key)
}

func (r *GormStockLedgerRepository) findLatest(ctx context.Context, db *gorm.DB, key ledger.StockKey) (*ledger.Entry, error) {
	var entry ledger.Entry
	query := r.applyKey(db.WithContext(ctx), key).
		Order("sequence DESC")
	if err := query.First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindForKey lists the history for a stock key in insertion order
func (r *GormStockLedgerRepository) FindForKey(ctx context.Context, key ledger.StockKey, filter shared.Filter) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	query := r.applyKey(r.db.WithContext(ctx).Model(&ledger.Entry{}), key).
		Order("sequence ASC")
	query = applyFilter(query, filter)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByReference finds the entries caused by a business document. An empty
// transaction type matches all types.
func (r *GormStockLedgerRepository) FindByReference(ctx context.Context, ref ledger.Reference, txType ledger.TransactionType) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	query := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", ref.Type, ref.ID)
	if txType != "" {
		query = query.Where("transaction_type = ?", txType)
	}
	if err := query.Order("sequence ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindLatestPerKeyForStore returns the most recent entry for every
// product/variant key in a store.
func (r *GormStockLedgerRepository) FindLatestPerKeyForStore(ctx context.Context, storeID uuid.UUID) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	// DISTINCT ON picks the newest row per (product, variant) pair.
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (product_id, product_variant_id) *
		     FROM stock_ledger
		     WHERE store_id = ?
		     ORDER BY product_id, product_variant_id, sequence DESC`, storeID).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForKey counts history rows for a stock key
func (r *GormStockLedgerRepository) CountForKey(ctx context.Context, key ledger.StockKey) (int64, error) {
	var count int64
	query := r.applyKey(r.db.WithContext(ctx).Model(&ledger.Entry{}), key)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create appends a new entry
func (r *GormStockLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// applyKey narrows a query to one stock key. A nil variant means the
// product-level balance, stored as NULL.
func (r *GormStockLedgerRepository) applyKey(db *gorm.DB, key ledger.StockKey) *gorm.DB {
	db = db.Where("store_id = ? AND product_id = ?", key.StoreID, key.ProductID)
	if key.VariantID != nil {
		return db.Where("product_variant_id = ?", *key.VariantID)
	}
	return db.Where("product_variant_id IS NULL")
}

var _ ledger.EntryRepository = (*GormStockLedgerRepository)(nil)
