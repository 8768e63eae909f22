package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// GormStockTransferRepository implements transfer.Repository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// FindByID finds a transfer by its ID
func (r *GormStockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.StockTransfer, error) {
	var t transfer.StockTransfer
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByNumber finds a transfer by its transfer number
func (r *GormStockTransferRepository) FindByNumber(ctx context.Context, number string) (*transfer.StockTransfer, error) {
	var t transfer.StockTransfer
	if err := r.db.WithContext(ctx).First(&t, "transfer_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByStore finds transfers where the store is source or destination
func (r *GormStockTransferRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]transfer.StockTransfer, error) {
	var transfers []transfer.StockTransfer
	query := r.db.WithContext(ctx).Model(&transfer.StockTransfer{}).
		Where("from_store_id = ? OR to_store_id = ?", storeID, storeID).
		Order("transfer_date DESC")
	if err := applyFilter(query, filter).Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// FindAll finds transfers matching the filter
func (r *GormStockTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]transfer.StockTransfer, error) {
	var transfers []transfer.StockTransfer
	query := r.db.WithContext(ctx).Model(&transfer.StockTransfer{}).
		Order("transfer_date DESC")
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := applyFilter(query, filter).Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Save creates or updates a transfer document
func (r *GormStockTransferRepository) Save(ctx context.Context, t *transfer.StockTransfer) error {
	return r.db.WithContext(ctx).Save(t).Error
}

var _ transfer.Repository = (*GormStockTransferRepository)(nil)
