package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/adjustment"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormStockAdjustmentRepository implements adjustment.Repository using GORM
type GormStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormStockAdjustmentRepository creates a new GormStockAdjustmentRepository
func NewGormStockAdjustmentRepository(db *gorm.DB) *GormStockAdjustmentRepository {
	return &GormStockAdjustmentRepository{db: db}
}

// FindByID finds an adjustment with its lines by ID
func (r *GormStockAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*adjustment.StockAdjustment, error) {
	var adj adjustment.StockAdjustment
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&adj, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &adj, nil
}

// FindByStore finds adjustments made in a store
func (r *GormStockAdjustmentRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]adjustment.StockAdjustment, error) {
	var adjs []adjustment.StockAdjustment
	query := r.db.WithContext(ctx).Model(&adjustment.StockAdjustment{}).
		Preload("Lines").
		Where("store_id = ?", storeID).
		Order("adjustment_date DESC")
	if err := applyFilter(query, filter).Find(&adjs).Error; err != nil {
		return nil, err
	}
	return adjs, nil
}

// Save creates or updates an adjustment with its lines
func (r *GormStockAdjustmentRepository) Save(ctx context.Context, adj *adjustment.StockAdjustment) error {
	return r.db.WithContext(ctx).Save(adj).Error
}

var _ adjustment.Repository = (*GormStockAdjustmentRepository)(nil)
