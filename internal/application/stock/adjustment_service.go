package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/adjustment"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdjustmentService records manual stock corrections. Each document line
// becomes one ledger entry (adjustment_in/out, damage or loss), atomic with
// the document write. Adjustments deliberately skip the availability check:
// a correction may drive a balance negative when the physical count says so.
type AdjustmentService struct {
	scope          TransactionScope
	stockSvc       *Service
	adjustmentRepo adjustment.Repository
	logger         *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(scope TransactionScope, stockSvc *Service, adjustmentRepo adjustment.Repository, logger *zap.Logger) *AdjustmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdjustmentService{
		scope:          scope,
		stockSvc:       stockSvc,
		adjustmentRepo: adjustmentRepo,
		logger:         logger,
	}
}

// GetAdjustment returns one adjustment document with its lines
func (s *AdjustmentService) GetAdjustment(ctx context.Context, adjustmentID uuid.UUID) (*adjustment.StockAdjustment, error) {
	return s.adjustmentRepo.FindByID(ctx, adjustmentID)
}

// ListAdjustments lists the adjustment documents of a store
func (s *AdjustmentService) ListAdjustments(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]adjustment.StockAdjustment, error) {
	return s.adjustmentRepo.FindByStore(ctx, storeID, filter)
}

// CreateAdjustment records an adjustment document and its ledger entries
func (s *AdjustmentService) CreateAdjustment(ctx context.Context, input CreateAdjustmentInput) (*adjustment.StockAdjustment, error) {
	if len(input.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT", "Adjustment must have at least one line")
	}
	for _, line := range input.Lines {
		if !adjustment.Reason(line.Reason).IsValid() {
			return nil, shared.NewDomainError("INVALID_REASON", "Unknown adjustment reason")
		}
	}

	var doc *adjustment.StockAdjustment
	err := s.stockSvc.withConflictRetry(ctx, func() error {
		doc = nil
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			doc, err = adjustment.NewStockAdjustment(input.StoreID, input.UserID, input.AdjustmentDate)
			if err != nil {
				return err
			}
			doc.Notes = input.Notes

			ref := ledger.Reference{Type: ledger.ReferenceTypeStockAdjustment, ID: doc.ID}
			userID := input.UserID

			for _, line := range input.Lines {
				reason := adjustment.Reason(line.Reason)

				unitCost, err := s.resolveLineCost(ctx, repos, line)
				if err != nil {
					return err
				}

				if _, err := doc.AddLine(line.ProductID, line.ProductVariantID, line.UnitID, reason, line.Quantity, unitCost); err != nil {
					return err
				}

				_, err = s.stockSvc.recordTransactionIn(ctx, repos, RecordTransactionInput{
					StoreID:          input.StoreID,
					ProductID:        line.ProductID,
					ProductVariantID: line.ProductVariantID,
					TransactionType:  reason.TransactionType(),
					Quantity:         line.Quantity,
					UnitCost:         unitCost,
					UnitID:           line.UnitID,
					Reference:        &ref,
					Notes:            line.Notes,
					UserID:           &userID,
				})
				if err != nil {
					return err
				}
			}

			if err := repos.Adjustments().Save(ctx, doc); err != nil {
				return err
			}

			s.logger.Info("stock adjustment recorded",
				zap.String("adjustment_number", doc.AdjustmentNumber),
				zap.String("store_id", input.StoreID.String()),
				zap.Int("lines", len(input.Lines)),
			)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// resolveLineCost returns the line's explicit unit cost, or the product's
// current cost price when none was given.
func (s *AdjustmentService) resolveLineCost(ctx context.Context, repos TransactionalRepositories, line AdjustmentLineInput) (decimal.Decimal, error) {
	if line.UnitCost != nil {
		return *line.UnitCost, nil
	}
	product, err := repos.Products().FindByID(ctx, line.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	return product.CostPrice, nil
}
