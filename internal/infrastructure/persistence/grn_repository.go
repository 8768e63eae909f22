package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/procurement"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormGRNRepository implements procurement.GRNRepository using GORM
type GormGRNRepository struct {
	db *gorm.DB
}

// NewGormGRNRepository creates a new GormGRNRepository
func NewGormGRNRepository(db *gorm.DB) *GormGRNRepository {
	return &GormGRNRepository{db: db}
}

// FindByID finds a GRN with its lines by ID
func (r *GormGRNRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.GoodsReceivedNote, error) {
	var grn procurement.GoodsReceivedNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&grn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &grn, nil
}

// FindByPurchaseOrder finds all GRNs for a purchase order
func (r *GormGRNRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.GoodsReceivedNote, error) {
	var grns []procurement.GoodsReceivedNote
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("received_date ASC").
		Find(&grns).Error
	if err != nil {
		return nil, err
	}
	return grns, nil
}

// FindByStore finds GRNs received into a store
func (r *GormGRNRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]procurement.GoodsReceivedNote, error) {
	var grns []procurement.GoodsReceivedNote
	query := r.db.WithContext(ctx).Model(&procurement.GoodsReceivedNote{}).
		Preload("Lines").
		Where("store_id = ?", storeID).
		Order("received_date DESC")
	if err := applyFilter(query, filter).Find(&grns).Error; err != nil {
		return nil, err
	}
	return grns, nil
}

// Save creates or updates a GRN with its lines
func (r *GormGRNRepository) Save(ctx context.Context, grn *procurement.GoodsReceivedNote) error {
	return r.db.WithContext(ctx).Save(grn).Error
}

var _ procurement.GRNRepository = (*GormGRNRepository)(nil)
