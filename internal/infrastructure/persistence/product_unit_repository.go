package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormProductUnitRepository implements catalog.ProductUnitRepository using GORM
type GormProductUnitRepository struct {
	db *gorm.DB
}

// NewGormProductUnitRepository creates a new GormProductUnitRepository
func NewGormProductUnitRepository(db *gorm.DB) *GormProductUnitRepository {
	return &GormProductUnitRepository{db: db}
}

// FindByProductAndUnit finds the override for a (product, unit) pair
func (r *GormProductUnitRepository) FindByProductAndUnit(ctx context.Context, productID, unitID uuid.UUID) (*catalog.ProductUnit, error) {
	var pu catalog.ProductUnit
	err := r.db.WithContext(ctx).
		First(&pu, "product_id = ? AND unit_id = ?", productID, unitID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pu, nil
}

// FindByProduct finds all unit overrides for a product
func (r *GormProductUnitRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductUnit, error) {
	var pus []catalog.ProductUnit
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&pus).Error
	if err != nil {
		return nil, err
	}
	return pus, nil
}

// Save creates or updates a product unit
func (r *GormProductUnitRepository) Save(ctx context.Context, productUnit *catalog.ProductUnit) error {
	return r.db.WithContext(ctx).Save(productUnit).Error
}

var _ catalog.ProductUnitRepository = (*GormProductUnitRepository)(nil)
