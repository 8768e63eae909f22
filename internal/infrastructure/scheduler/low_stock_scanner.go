package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	stockapp "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/store"
)

// LowStockScanner periodically walks every active store and logs products
// that sit at or below their reorder level. Interval 0 disables the scan.
type LowStockScanner struct {
	stockService *stockapp.Service
	storeRepo    store.Repository
	interval     time.Duration
	logger       *zap.Logger
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.Mutex
	isRunning    bool
}

// NewLowStockScanner creates a new low stock scanner
func NewLowStockScanner(
	stockService *stockapp.Service,
	storeRepo store.Repository,
	interval time.Duration,
	logger *zap.Logger,
) *LowStockScanner {
	return &LowStockScanner{
		stockService: stockService,
		storeRepo:    storeRepo,
		interval:     interval,
		logger:       logger.Named("low-stock-scanner"),
	}
}

// Start begins the periodic scan
func (s *LowStockScanner) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	if s.interval <= 0 {
		s.mu.Unlock()
		s.logger.Info("Low stock scanner is disabled")
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Low stock scanner started", zap.Duration("interval", s.interval))
}

// Stop gracefully stops the scanner
func (s *LowStockScanner) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Low stock scanner stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Low stock scanner stop timed out")
		return ctx.Err()
	}
}

func (s *LowStockScanner) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanOnce(ctx)
		}
	}
}

func (s *LowStockScanner) scanOnce(ctx context.Context) {
	filter := shared.Filter{Page: 1, PageSize: 500}
	stores, err := s.storeRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list stores for low stock scan", zap.Error(err))
		return
	}

	for i := range stores {
		st := &stores[i]
		if !st.IsActive {
			continue
		}

		items, err := s.stockService.GetLowStockProducts(ctx, st.ID)
		if err != nil {
			s.logger.Error("Low stock scan failed for store",
				zap.String("store_id", st.ID.String()),
				zap.String("store_code", st.Code),
				zap.Error(err),
			)
			continue
		}
		if len(items) == 0 {
			continue
		}

		for _, item := range items {
			s.logger.Warn("Product below reorder level",
				zap.String("store_id", st.ID.String()),
				zap.String("store_code", st.Code),
				zap.String("product_id", item.Product.ID.String()),
				zap.String("product_name", item.Product.Name),
				zap.String("current_stock", item.CurrentStock.String()),
				zap.String("reorder_level", item.ReorderLevel.String()),
				zap.String("reorder_quantity", item.ReorderQuantity.String()),
			)
		}
	}
}
