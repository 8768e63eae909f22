package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// maxConflictRetries bounds how often a ledger write is retried after a
	// serialization or deadlock failure before the conflict is surfaced.
	maxConflictRetries = 3
)

// Service is the stock ledger engine: the only writer of stock_ledger rows
// and the query surface over the latest balances. All balance math is done in
// the product's base unit; quantities arriving in other units go through the
// UnitConverter first.
type Service struct {
	scope       TransactionScope
	ledgerRepo  ledger.EntryRepository
	productRepo catalog.ProductRepository
	converter   *catalog.UnitConverter
	logger      *zap.Logger
}

// NewService creates a new stock Service. The converter and the plain
// repositories serve the read paths; mutations run through the scope.
func NewService(
	scope TransactionScope,
	ledgerRepo ledger.EntryRepository,
	productRepo catalog.ProductRepository,
	converter *catalog.UnitConverter,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:       scope,
		ledgerRepo:  ledgerRepo,
		productRepo: productRepo,
		converter:   converter,
		logger:      logger,
	}
}

// RecordTransaction appends one ledger entry for the given stock movement,
// inside its own database transaction. The read of the previous balance takes
// a row lock on the key's latest entry, so two concurrent writers against the
// same key serialize instead of both chaining off a stale balance.
//
// The resulting balance may go negative: availability is the caller's check
// (HasAvailableStock), which keeps correction entries possible.
func (s *Service) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*ledger.Entry, error) {
	var entry *ledger.Entry
	err := s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			entry, err = s.recordTransactionIn(ctx, repos, input)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// recordTransactionIn is the transactional core of RecordTransaction. It is
// reused by the transfer, goods receipt and adjustment workflows, which need
// the ledger write to be atomic with their own document writes.
func (s *Service) recordTransactionIn(ctx context.Context, repos TransactionalRepositories, input RecordTransactionInput) (*ledger.Entry, error) {
	if input.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if input.UnitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if !input.TransactionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}

	product, err := repos.Products().FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.TrackInventory {
		return nil, shared.NewDomainError("INVENTORY_NOT_TRACKED", "Product does not track inventory")
	}

	converter := catalog.NewUnitConverter(repos.Units(), repos.ProductUnits())
	baseQuantity, err := converter.ToBaseUnit(ctx, product, input.Quantity, input.UnitID)
	if err != nil {
		return nil, err
	}

	key := ledger.StockKey{
		StoreID:   input.StoreID,
		ProductID: input.ProductID,
		VariantID: input.ProductVariantID,
	}

	currentQty := decimal.Zero
	currentValue := decimal.Zero
	last, err := repos.Ledger().FindLatestForKeyLocked(ctx, key)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if last != nil {
		currentQty = last.BalanceQuantity
		currentValue = last.BalanceValue
	}

	isIncrease := input.TransactionType.IsIncrease()
	newQty := currentQty.Sub(baseQuantity)
	if isIncrease {
		newQty = currentQty.Add(baseQuantity)
	}
	newQty = newQty.Round(catalog.QuantityPrecision)

	newValue := ledger.ComputeBalanceValue(
		product.ValuationMethod,
		currentQty,
		currentValue,
		baseQuantity,
		input.UnitCost,
		isIncrease,
	)

	entry, err := ledger.NewEntry(key, input.TransactionType, input.Quantity, baseQuantity, input.UnitCost, newQty, newValue)
	if err != nil {
		return nil, err
	}
	if input.UnitID != nil {
		entry.WithUnit(*input.UnitID)
	}
	if input.Reference != nil {
		entry.WithReference(*input.Reference)
	}
	if input.Notes != "" {
		entry.WithNotes(input.Notes)
	}
	if input.UserID != nil {
		entry.WithCreatedBy(*input.UserID)
	}
	if input.TransactionDate != nil {
		entry.WithTransactionDate(*input.TransactionDate)
	}

	if err := repos.Ledger().Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Debug("stock ledger entry recorded",
		zap.String("store_id", input.StoreID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.String("transaction_type", input.TransactionType.String()),
		zap.String("base_quantity_change", entry.BaseQuantityChange.String()),
		zap.String("balance_quantity", entry.BalanceQuantity.String()),
	)

	return entry, nil
}

// GetStockBalance returns the current quantity, value and average cost for a
// stock key. A key with no history is all zeros. The lookup reads only the
// latest ledger row, never the whole history.
func (s *Service) GetStockBalance(ctx context.Context, storeID, productID uuid.UUID, variantID *uuid.UUID) (StockBalance, error) {
	key := ledger.StockKey{StoreID: storeID, ProductID: productID, VariantID: variantID}
	last, err := s.ledgerRepo.FindLatestForKey(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ZeroBalance(), nil
		}
		return StockBalance{}, err
	}

	return StockBalance{
		Quantity:    last.BalanceQuantity,
		Value:       last.BalanceValue,
		AverageCost: ledger.AverageCost(last.BalanceQuantity, last.BalanceValue),
	}, nil
}

// HasAvailableStock reports whether the store holds at least requiredQty of
// the product (converted to base units). Exact equality counts as available.
// This is the sole overselling guard: RecordTransaction itself does not
// reject negative balances.
func (s *Service) HasAvailableStock(ctx context.Context, storeID, productID uuid.UUID, requiredQty decimal.Decimal, variantID, unitID *uuid.UUID) (bool, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return false, err
	}

	baseRequired, err := s.converter.ToBaseUnit(ctx, product, requiredQty, unitID)
	if err != nil {
		return false, err
	}

	balance, err := s.GetStockBalance(ctx, storeID, productID, variantID)
	if err != nil {
		return false, err
	}
	return balance.Quantity.GreaterThanOrEqual(baseRequired), nil
}

// GetLowStockProducts returns every active, inventory-tracked product whose
// balance in the store is at or below its reorder level. Linear in the
// catalog size.
func (s *Service) GetLowStockProducts(ctx context.Context, storeID uuid.UUID) ([]LowStockItem, error) {
	products, err := s.productRepo.FindActiveTracked(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]LowStockItem, 0)
	for i := range products {
		product := products[i]
		balance, err := s.GetStockBalance(ctx, storeID, product.ID, nil)
		if err != nil {
			return nil, err
		}
		if balance.Quantity.LessThanOrEqual(product.ReorderLevel) {
			items = append(items, LowStockItem{
				Product:         product,
				CurrentStock:    balance.Quantity,
				ReorderLevel:    product.ReorderLevel,
				ReorderQuantity: product.ReorderQuantity,
			})
		}
	}
	return items, nil
}

// GetLedgerHistory lists the ledger rows for a stock key in insertion order
func (s *Service) GetLedgerHistory(ctx context.Context, storeID, productID uuid.UUID, variantID *uuid.UUID, filter shared.Filter) ([]ledger.Entry, int64, error) {
	key := ledger.StockKey{StoreID: storeID, ProductID: productID, VariantID: variantID}
	entries, err := s.ledgerRepo.FindForKey(ctx, key, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.CountForKey(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// GetStockLevels returns the latest position of every stock key in a store
func (s *Service) GetStockLevels(ctx context.Context, storeID uuid.UUID) ([]StockLevel, error) {
	latest, err := s.ledgerRepo.FindLatestPerKeyForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	levels := make([]StockLevel, 0, len(latest))
	for _, e := range latest {
		levels = append(levels, StockLevel{
			ProductID:        e.ProductID,
			ProductVariantID: e.ProductVariantID,
			Quantity:         e.BalanceQuantity,
			Value:            e.BalanceValue,
			AverageCost:      ledger.AverageCost(e.BalanceQuantity, e.BalanceValue),
			LastMovementAt:   e.TransactionDate,
		})
	}
	return levels, nil
}

// GetAvailableUnits returns the units a product can be transacted in,
// optionally filtered to purchase or sale units
func (s *Service) GetAvailableUnits(ctx context.Context, productID uuid.UUID, usage catalog.UnitUsage) ([]catalog.ProductUnitOption, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.converter.AvailableUnits(ctx, product, usage)
}

// balanceIn reads the current balance for a key within an open transaction.
// Used by workflows that need the post-write balance before committing.
func (s *Service) balanceIn(ctx context.Context, repos TransactionalRepositories, key ledger.StockKey) (StockBalance, error) {
	last, err := repos.Ledger().FindLatestForKey(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ZeroBalance(), nil
		}
		return StockBalance{}, err
	}
	return StockBalance{
		Quantity:    last.BalanceQuantity,
		Value:       last.BalanceValue,
		AverageCost: ledger.AverageCost(last.BalanceQuantity, last.BalanceValue),
	}, nil
}

// withConflictRetry retries fn a bounded number of times when it fails with
// a concurrency conflict. Other errors pass through immediately.
func (s *Service) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if err = fn(); err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("stock transaction conflict, retrying", zap.Int("attempt", attempt+1))
	}
	return err
}
