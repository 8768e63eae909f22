package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/procurement"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GoodsReceiptService records purchase-order goods receipts. Each received
// line becomes a receipt ledger entry, and the ledger's new weighted-average
// cost is written back as the product's (or variant's) cost price in the same
// transaction, so a rollback never leaves a stale master-data cost behind.
type GoodsReceiptService struct {
	scope    TransactionScope
	stockSvc *Service
	grnRepo  procurement.GRNRepository
	logger   *zap.Logger
}

// NewGoodsReceiptService creates a new GoodsReceiptService
func NewGoodsReceiptService(scope TransactionScope, stockSvc *Service, grnRepo procurement.GRNRepository, logger *zap.Logger) *GoodsReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoodsReceiptService{
		scope:    scope,
		stockSvc: stockSvc,
		grnRepo:  grnRepo,
		logger:   logger,
	}
}

// GetGoodsReceipt returns one GRN with its lines
func (s *GoodsReceiptService) GetGoodsReceipt(ctx context.Context, grnID uuid.UUID) (*procurement.GoodsReceivedNote, error) {
	return s.grnRepo.FindByID(ctx, grnID)
}

// ListGoodsReceipts lists the GRNs received into a store
func (s *GoodsReceiptService) ListGoodsReceipts(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]procurement.GoodsReceivedNote, error) {
	return s.grnRepo.FindByStore(ctx, storeID, filter)
}

// ReceiveGoods creates the GRN, appends one receipt ledger entry per line and
// feeds the resulting average cost back into the product master data. Line
// unit costs are given in the line's transacted unit and are converted to a
// per-base-unit cost before they reach the ledger (a carton of 24 bought at
// 240.00 is recorded at 10.00 per piece).
func (s *GoodsReceiptService) ReceiveGoods(ctx context.Context, input ReceiveGoodsInput) (*procurement.GoodsReceivedNote, error) {
	if len(input.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Goods receipt must have at least one line")
	}

	var grn *procurement.GoodsReceivedNote
	err := s.stockSvc.withConflictRetry(ctx, func() error {
		grn = nil
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			grn, err = procurement.NewGoodsReceivedNote(input.PurchaseOrderID, input.StoreID, input.UserID, input.ReceivedDate)
			if err != nil {
				return err
			}
			grn.Notes = input.Notes

			for _, line := range input.Lines {
				if _, err := grn.AddLine(line.ProductID, line.ProductVariantID, line.UnitID, line.QuantityOrdered, line.QuantityReceived, line.UnitCost); err != nil {
					return err
				}
			}
			if err := repos.GRNs().Save(ctx, grn); err != nil {
				return err
			}

			ref := ledger.Reference{Type: ledger.ReferenceTypeGoodsReceivedNote, ID: grn.ID}
			converter := catalog.NewUnitConverter(repos.Units(), repos.ProductUnits())
			userID := input.UserID

			for _, line := range input.Lines {
				product, err := repos.Products().FindByID(ctx, line.ProductID)
				if err != nil {
					return err
				}

				baseUnitCost, err := perBaseUnitCost(ctx, converter, product, line.UnitCost, line.UnitID)
				if err != nil {
					return err
				}

				_, err = s.stockSvc.recordTransactionIn(ctx, repos, RecordTransactionInput{
					StoreID:          input.StoreID,
					ProductID:        line.ProductID,
					ProductVariantID: line.ProductVariantID,
					TransactionType:  ledger.TransactionTypeReceipt,
					Quantity:         line.QuantityReceived,
					UnitCost:         baseUnitCost,
					UnitID:           line.UnitID,
					Reference:        &ref,
					Notes:            fmt.Sprintf("GRN: %s", grn.GRNNumber),
					UserID:           &userID,
				})
				if err != nil {
					return err
				}

				if err := s.applyCostFeedback(ctx, repos, grn, product, line); err != nil {
					return err
				}
			}

			s.logger.Info("goods receipt recorded",
				zap.String("grn_number", grn.GRNNumber),
				zap.String("store_id", input.StoreID.String()),
				zap.Int("lines", len(input.Lines)),
			)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return grn, nil
}

// applyCostFeedback reads the key's balance back after the ledger write and
// persists the new weighted-average cost as the master-data cost price,
// recording a price history row when it actually changed.
func (s *GoodsReceiptService) applyCostFeedback(
	ctx context.Context,
	repos TransactionalRepositories,
	grn *procurement.GoodsReceivedNote,
	product *catalog.Product,
	line GoodsReceiptLineInput,
) error {
	key := ledger.StockKey{StoreID: grn.StoreID, ProductID: line.ProductID, VariantID: line.ProductVariantID}
	balance, err := s.stockSvc.balanceIn(ctx, repos, key)
	if err != nil {
		return err
	}
	newCost := balance.AverageCost.Round(ledger.MoneyPrecision)

	if line.ProductVariantID != nil {
		variant, err := repos.Variants().FindByID(ctx, *line.ProductVariantID)
		if err != nil {
			return err
		}
		if variant.CostPrice.Equal(newCost) {
			return nil
		}
		oldCost := variant.CostPrice
		if err := repos.Variants().UpdateCostPrice(ctx, variant.ID, newCost); err != nil {
			return err
		}
		history := catalog.NewPriceHistory(product.ID, oldCost, newCost, variant.SellingPrice, variant.SellingPrice, catalog.PriceChangeSourceGoodsReceipt).
			ForVariant(variant.ID).
			WithReference(ledger.ReferenceTypeGoodsReceivedNote.String(), grn.ID).
			WithStore(grn.StoreID).
			WithChangedBy(grn.ReceivedBy)
		return repos.PriceHistory().Create(ctx, history)
	}

	if product.CostPrice.Equal(newCost) {
		return nil
	}
	oldCost := product.CostPrice
	if err := repos.Products().UpdateCostPrice(ctx, product.ID, newCost); err != nil {
		return err
	}
	history := catalog.NewPriceHistory(product.ID, oldCost, newCost, product.SellingPrice, product.SellingPrice, catalog.PriceChangeSourceGoodsReceipt).
		WithReference(ledger.ReferenceTypeGoodsReceivedNote.String(), grn.ID).
		WithStore(grn.StoreID).
		WithChangedBy(grn.ReceivedBy)
	return repos.PriceHistory().Create(ctx, history)
}

// perBaseUnitCost converts a unit cost expressed in fromUnitID's unit to a
// cost per base unit by dividing through the unit's conversion factor.
func perBaseUnitCost(ctx context.Context, converter *catalog.UnitConverter, product *catalog.Product, unitCost decimal.Decimal, fromUnitID *uuid.UUID) (decimal.Decimal, error) {
	if fromUnitID == nil || *fromUnitID == product.UnitID {
		return unitCost, nil
	}
	factor, err := converter.ToBaseUnit(ctx, product, decimal.NewFromInt(1), fromUnitID)
	if err != nil {
		return decimal.Zero, err
	}
	if factor.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.ErrInvalidUnit
	}
	return unitCost.Div(factor).Round(ledger.MoneyPrecision), nil
}
