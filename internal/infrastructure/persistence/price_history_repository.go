package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormPriceHistoryRepository implements catalog.PriceHistoryRepository using
// GORM. Price history rows are append-only.
type GormPriceHistoryRepository struct {
	db *gorm.DB
}

// NewGormPriceHistoryRepository creates a new GormPriceHistoryRepository
func NewGormPriceHistoryRepository(db *gorm.DB) *GormPriceHistoryRepository {
	return &GormPriceHistoryRepository{db: db}
}

// Create appends a price history record
func (r *GormPriceHistoryRepository) Create(ctx context.Context, history *catalog.ProductPriceHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// FindByProduct finds price history for a product, newest first
func (r *GormPriceHistoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]catalog.ProductPriceHistory, error) {
	var rows []catalog.ProductPriceHistory
	query := r.db.WithContext(ctx).Model(&catalog.ProductPriceHistory{}).
		Where("product_id = ?", productID).
		Order("created_at DESC")
	if err := applyFilter(query, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var _ catalog.PriceHistoryRepository = (*GormPriceHistoryRepository)(nil)
