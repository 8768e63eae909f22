package stock

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/adjustment"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/procurement"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/store"
	"github.com/retailcore/backend/internal/domain/transfer"
)

// fakeRepos is an in-memory implementation of TransactionalRepositories.
// It keeps the ledger as an append-only slice so the chained-balance reads
// behave like the real thing.
type fakeRepos struct {
	ledger       *fakeLedgerRepository
	products     *fakeProductRepository
	variants     *fakeVariantRepository
	units        *fakeUnitRepository
	productUnits *fakeProductUnitRepository
	priceHistory *fakePriceHistoryRepository
	transfers    *fakeTransferRepository
	grns         *fakeGRNRepository
	adjustments  *fakeAdjustmentRepository
	stores       *fakeStoreRepository
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{
		ledger:       &fakeLedgerRepository{},
		products:     &fakeProductRepository{items: map[uuid.UUID]*catalog.Product{}},
		variants:     &fakeVariantRepository{items: map[uuid.UUID]*catalog.ProductVariant{}},
		units:        &fakeUnitRepository{items: map[uuid.UUID]*catalog.Unit{}},
		productUnits: &fakeProductUnitRepository{},
		priceHistory: &fakePriceHistoryRepository{},
		transfers:    &fakeTransferRepository{items: map[uuid.UUID]*transfer.StockTransfer{}},
		grns:         &fakeGRNRepository{items: map[uuid.UUID]*procurement.GoodsReceivedNote{}},
		adjustments:  &fakeAdjustmentRepository{items: map[uuid.UUID]*adjustment.StockAdjustment{}},
		stores:       &fakeStoreRepository{items: map[uuid.UUID]*store.Store{}},
	}
}

func (r *fakeRepos) Ledger() ledger.EntryRepository                { return r.ledger }
func (r *fakeRepos) Products() catalog.ProductRepository           { return r.products }
func (r *fakeRepos) Variants() catalog.ProductVariantRepository    { return r.variants }
func (r *fakeRepos) Units() catalog.UnitRepository                 { return r.units }
func (r *fakeRepos) ProductUnits() catalog.ProductUnitRepository   { return r.productUnits }
func (r *fakeRepos) PriceHistory() catalog.PriceHistoryRepository  { return r.priceHistory }
func (r *fakeRepos) Transfers() transfer.Repository                { return r.transfers }
func (r *fakeRepos) GRNs() procurement.GRNRepository               { return r.grns }
func (r *fakeRepos) Adjustments() adjustment.Repository            { return r.adjustments }
func (r *fakeRepos) Stores() store.Repository                      { return r.stores }

var _ TransactionalRepositories = (*fakeRepos)(nil)

func keyMatches(e *ledger.Entry, key ledger.StockKey) bool {
	if e.StoreID != key.StoreID || e.ProductID != key.ProductID {
		return false
	}
	if key.VariantID == nil {
		return e.ProductVariantID == nil
	}
	return e.ProductVariantID != nil && *e.ProductVariantID == *key.VariantID
}

type fakeLedgerRepository struct {
	mu      sync.Mutex
	entries []*ledger.Entry
}

func (r *fakeLedgerRepository) FindByID(_ context.Context, id uuid.UUID) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLedgerRepository) FindLatestForKey(_ context.Context, key ledger.StockKey) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if keyMatches(r.entries[i], key) {
			return r.entries[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLedgerRepository) FindLatestForKeyLocked(ctx context.Context, key ledger.StockKey) (*ledger.Entry, error) {
	return r.FindLatestForKey(ctx, key)
}

func (r *fakeLedgerRepository) FindForKey(_ context.Context, key ledger.StockKey, _ shared.Filter) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]ledger.Entry, 0)
	for _, e := range r.entries {
		if keyMatches(e, key) {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *fakeLedgerRepository) FindByReference(_ context.Context, ref ledger.Reference, txType ledger.TransactionType) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]ledger.Entry, 0)
	for _, e := range r.entries {
		if e.ReferenceType == nil || e.ReferenceID == nil {
			continue
		}
		if *e.ReferenceType != ref.Type || *e.ReferenceID != ref.ID {
			continue
		}
		if txType != "" && e.TransactionType != txType {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (r *fakeLedgerRepository) FindLatestPerKeyForStore(_ context.Context, storeID uuid.UUID) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := make([]ledger.Entry, 0)
	seen := map[ledger.StockKey]int{}
	for _, e := range r.entries {
		if e.StoreID != storeID {
			continue
		}
		key := ledger.StockKey{StoreID: e.StoreID, ProductID: e.ProductID, VariantID: e.ProductVariantID}
		// normalize pointer keys so map lookups compare values
		flat := ledger.StockKey{StoreID: key.StoreID, ProductID: key.ProductID}
		if key.VariantID != nil {
			v := *key.VariantID
			flat.VariantID = &v
		}
		idx := -1
		for k, i := range seen {
			if k.ProductID == flat.ProductID && samePtr(k.VariantID, flat.VariantID) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			latest[idx] = *e
		} else {
			seen[flat] = len(latest)
			latest = append(latest, *e)
		}
	}
	return latest, nil
}

func samePtr(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeLedgerRepository) CountForKey(_ context.Context, key ledger.StockKey) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if keyMatches(e, key) {
			n++
		}
	}
	return n, nil
}

func (r *fakeLedgerRepository) Create(_ context.Context, entry *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	copied.Sequence = int64(len(r.entries) + 1) // the DB assigns this ordinal
	r.entries = append(r.entries, &copied)
	return nil
}

var _ ledger.EntryRepository = (*fakeLedgerRepository)(nil)

type fakeProductRepository struct {
	items map[uuid.UUID]*catalog.Product
}

func (r *fakeProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.items[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepository) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	for _, p := range r.items {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepository) FindActiveTracked(_ context.Context) ([]catalog.Product, error) {
	result := make([]catalog.Product, 0)
	for _, p := range r.items {
		if p.Status == catalog.ProductStatusActive && p.TrackInventory {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakeProductRepository) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	result := make([]catalog.Product, 0, len(r.items))
	for _, p := range r.items {
		result = append(result, *p)
	}
	return result, nil
}

func (r *fakeProductRepository) Save(_ context.Context, product *catalog.Product) error {
	r.items[product.ID] = product
	return nil
}

func (r *fakeProductRepository) UpdateCostPrice(_ context.Context, productID uuid.UUID, costPrice decimal.Decimal) error {
	p, ok := r.items[productID]
	if !ok {
		return shared.ErrNotFound
	}
	p.CostPrice = costPrice
	return nil
}

var _ catalog.ProductRepository = (*fakeProductRepository)(nil)

type fakeVariantRepository struct {
	items map[uuid.UUID]*catalog.ProductVariant
}

func (r *fakeVariantRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	if v, ok := r.items[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeVariantRepository) FindByProduct(_ context.Context, productID uuid.UUID) ([]catalog.ProductVariant, error) {
	result := make([]catalog.ProductVariant, 0)
	for _, v := range r.items {
		if v.ProductID == productID {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (r *fakeVariantRepository) Save(_ context.Context, variant *catalog.ProductVariant) error {
	r.items[variant.ID] = variant
	return nil
}

func (r *fakeVariantRepository) UpdateCostPrice(_ context.Context, variantID uuid.UUID, costPrice decimal.Decimal) error {
	v, ok := r.items[variantID]
	if !ok {
		return shared.ErrNotFound
	}
	v.CostPrice = costPrice
	return nil
}

var _ catalog.ProductVariantRepository = (*fakeVariantRepository)(nil)

type fakeUnitRepository struct {
	items map[uuid.UUID]*catalog.Unit
}

func (r *fakeUnitRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Unit, error) {
	if u, ok := r.items[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUnitRepository) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Unit, error) {
	result := make([]catalog.Unit, 0, len(r.items))
	for _, u := range r.items {
		result = append(result, *u)
	}
	return result, nil
}

func (r *fakeUnitRepository) Save(_ context.Context, unit *catalog.Unit) error {
	r.items[unit.ID] = unit
	return nil
}

var _ catalog.UnitRepository = (*fakeUnitRepository)(nil)

type fakeProductUnitRepository struct {
	items []*catalog.ProductUnit
}

func (r *fakeProductUnitRepository) FindByProductAndUnit(_ context.Context, productID, unitID uuid.UUID) (*catalog.ProductUnit, error) {
	for _, pu := range r.items {
		if pu.ProductID == productID && pu.UnitID == unitID {
			return pu, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductUnitRepository) FindByProduct(_ context.Context, productID uuid.UUID) ([]catalog.ProductUnit, error) {
	result := make([]catalog.ProductUnit, 0)
	for _, pu := range r.items {
		if pu.ProductID == productID {
			result = append(result, *pu)
		}
	}
	return result, nil
}

func (r *fakeProductUnitRepository) Save(_ context.Context, productUnit *catalog.ProductUnit) error {
	r.items = append(r.items, productUnit)
	return nil
}

var _ catalog.ProductUnitRepository = (*fakeProductUnitRepository)(nil)

type fakePriceHistoryRepository struct {
	records []*catalog.ProductPriceHistory
}

func (r *fakePriceHistoryRepository) Create(_ context.Context, history *catalog.ProductPriceHistory) error {
	r.records = append(r.records, history)
	return nil
}

func (r *fakePriceHistoryRepository) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]catalog.ProductPriceHistory, error) {
	result := make([]catalog.ProductPriceHistory, 0)
	for _, h := range r.records {
		if h.ProductID == productID {
			result = append(result, *h)
		}
	}
	return result, nil
}

var _ catalog.PriceHistoryRepository = (*fakePriceHistoryRepository)(nil)

type fakeTransferRepository struct {
	items map[uuid.UUID]*transfer.StockTransfer
}

func (r *fakeTransferRepository) FindByID(_ context.Context, id uuid.UUID) (*transfer.StockTransfer, error) {
	if t, ok := r.items[id]; ok {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTransferRepository) FindByNumber(_ context.Context, number string) (*transfer.StockTransfer, error) {
	for _, t := range r.items {
		if t.TransferNumber == number {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTransferRepository) FindByStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) ([]transfer.StockTransfer, error) {
	result := make([]transfer.StockTransfer, 0)
	for _, t := range r.items {
		if t.FromStoreID == storeID || t.ToStoreID == storeID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (r *fakeTransferRepository) FindAll(_ context.Context, _ shared.Filter) ([]transfer.StockTransfer, error) {
	result := make([]transfer.StockTransfer, 0, len(r.items))
	for _, t := range r.items {
		result = append(result, *t)
	}
	return result, nil
}

func (r *fakeTransferRepository) Save(_ context.Context, t *transfer.StockTransfer) error {
	r.items[t.ID] = t
	return nil
}

var _ transfer.Repository = (*fakeTransferRepository)(nil)

type fakeGRNRepository struct {
	items map[uuid.UUID]*procurement.GoodsReceivedNote
}

func (r *fakeGRNRepository) FindByID(_ context.Context, id uuid.UUID) (*procurement.GoodsReceivedNote, error) {
	if g, ok := r.items[id]; ok {
		return g, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeGRNRepository) FindByPurchaseOrder(_ context.Context, purchaseOrderID uuid.UUID) ([]procurement.GoodsReceivedNote, error) {
	result := make([]procurement.GoodsReceivedNote, 0)
	for _, g := range r.items {
		if g.PurchaseOrderID == purchaseOrderID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (r *fakeGRNRepository) FindByStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) ([]procurement.GoodsReceivedNote, error) {
	result := make([]procurement.GoodsReceivedNote, 0)
	for _, g := range r.items {
		if g.StoreID == storeID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (r *fakeGRNRepository) Save(_ context.Context, grn *procurement.GoodsReceivedNote) error {
	r.items[grn.ID] = grn
	return nil
}

var _ procurement.GRNRepository = (*fakeGRNRepository)(nil)

type fakeAdjustmentRepository struct {
	items map[uuid.UUID]*adjustment.StockAdjustment
}

func (r *fakeAdjustmentRepository) FindByID(_ context.Context, id uuid.UUID) (*adjustment.StockAdjustment, error) {
	if a, ok := r.items[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAdjustmentRepository) FindByStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) ([]adjustment.StockAdjustment, error) {
	result := make([]adjustment.StockAdjustment, 0)
	for _, a := range r.items {
		if a.StoreID == storeID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *fakeAdjustmentRepository) Save(_ context.Context, adj *adjustment.StockAdjustment) error {
	r.items[adj.ID] = adj
	return nil
}

var _ adjustment.Repository = (*fakeAdjustmentRepository)(nil)

type fakeStoreRepository struct {
	items map[uuid.UUID]*store.Store
}

func (r *fakeStoreRepository) FindByID(_ context.Context, id uuid.UUID) (*store.Store, error) {
	if s, ok := r.items[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStoreRepository) FindAll(_ context.Context, _ shared.Filter) ([]store.Store, error) {
	result := make([]store.Store, 0, len(r.items))
	for _, s := range r.items {
		result = append(result, *s)
	}
	return result, nil
}

func (r *fakeStoreRepository) Save(_ context.Context, s *store.Store) error {
	r.items[s.ID] = s
	return nil
}

var _ store.Repository = (*fakeStoreRepository)(nil)

// conflictScope wraps another scope and fails the first n executions with a
// concurrency conflict, for retry tests.
type conflictScope struct {
	inner     TransactionScope
	failures  int
	execCount int
}

func (s *conflictScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.execCount++
	if s.execCount <= s.failures {
		return shared.ErrConcurrencyConflict
	}
	return s.inner.Execute(ctx, fn)
}

var _ TransactionScope = (*conflictScope)(nil)

// testEnv bundles the fixture wiring every service test needs
type testEnv struct {
	repos    *fakeRepos
	scope    TransactionScope
	stockSvc *Service
}

func newTestEnv() *testEnv {
	repos := newFakeRepos()
	scope := NewNoOpTransactionScope(repos)
	converter := catalog.NewUnitConverter(repos.units, repos.productUnits)
	svc := NewService(scope, repos.ledger, repos.products, converter, nil)
	return &testEnv{repos: repos, scope: scope, stockSvc: svc}
}
