package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/transfer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferService orchestrates inter-store stock transfers. Dispatch debits
// the source store; receipt is a separate, later workflow step that credits
// the destination by replaying the dispatch ledger rows. Each leg runs in its
// own transaction, atomic with the transfer document update for that leg.
type TransferService struct {
	scope        TransactionScope
	stockSvc     *Service
	transferRepo transfer.Repository
	logger       *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(scope TransactionScope, stockSvc *Service, transferRepo transfer.Repository, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		scope:        scope,
		stockSvc:     stockSvc,
		transferRepo: transferRepo,
		logger:       logger,
	}
}

// GetTransfer returns one transfer document
func (s *TransferService) GetTransfer(ctx context.Context, transferID uuid.UUID) (*transfer.StockTransfer, error) {
	return s.transferRepo.FindByID(ctx, transferID)
}

// ListTransfers lists transfer documents, optionally narrowed to a store
func (s *TransferService) ListTransfers(ctx context.Context, storeID *uuid.UUID, filter shared.Filter) ([]transfer.StockTransfer, error) {
	if storeID != nil {
		return s.transferRepo.FindByStore(ctx, *storeID, filter)
	}
	return s.transferRepo.FindAll(ctx, filter)
}

// CreateTransfer validates availability at the source store and dispatches
// the stock: one transfer_out ledger entry per line plus the pending transfer
// document, all in one transaction.
func (s *TransferService) CreateTransfer(ctx context.Context, input CreateTransferInput) (*transfer.StockTransfer, error) {
	if len(input.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Transfer must have at least one line")
	}

	var doc *transfer.StockTransfer
	err := s.stockSvc.withConflictRetry(ctx, func() error {
		doc = nil
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			fromStore, err := repos.Stores().FindByID(ctx, input.FromStoreID)
			if err != nil {
				return err
			}
			toStore, err := repos.Stores().FindByID(ctx, input.ToStoreID)
			if err != nil {
				return err
			}

			// Availability is checked before any ledger write so an
			// insufficient line aborts the whole document.
			for _, line := range input.Lines {
				ok, err := s.hasAvailableStockIn(ctx, repos, input.FromStoreID, line)
				if err != nil {
					return err
				}
				if !ok {
					return shared.ErrInsufficientStock
				}
			}

			doc, err = transfer.NewStockTransfer(input.FromStoreID, input.ToStoreID, input.UserID, input.TransferDate)
			if err != nil {
				return err
			}
			doc.Notes = input.Notes
			if err := repos.Transfers().Save(ctx, doc); err != nil {
				return err
			}

			ref := ledger.Reference{Type: ledger.ReferenceTypeStockTransfer, ID: doc.ID}
			for _, line := range input.Lines {
				unitCost, err := s.resolveLineCost(ctx, repos, line)
				if err != nil {
					return err
				}
				userID := input.UserID
				_, err = s.stockSvc.recordTransactionIn(ctx, repos, RecordTransactionInput{
					StoreID:          input.FromStoreID,
					ProductID:        line.ProductID,
					ProductVariantID: line.ProductVariantID,
					TransactionType:  ledger.TransactionTypeTransferOut,
					Quantity:         line.Quantity,
					UnitCost:         unitCost,
					Reference:        &ref,
					Notes:            fmt.Sprintf("Transfer to %s", toStore.Name),
					UserID:           &userID,
				})
				if err != nil {
					return err
				}
			}

			s.logger.Info("stock transfer dispatched",
				zap.String("transfer_number", doc.TransferNumber),
				zap.String("from_store", fromStore.Name),
				zap.String("to_store", toStore.Name),
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

// ApproveTransfer moves a pending transfer into transit
func (s *TransferService) ApproveTransfer(ctx context.Context, transferID, userID uuid.UUID) (*transfer.StockTransfer, error) {
	var doc *transfer.StockTransfer
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		doc, err = repos.Transfers().FindByID(ctx, transferID)
		if err != nil {
			return err
		}
		if err := doc.Approve(userID); err != nil {
			return err
		}
		return repos.Transfers().Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ReceiveTransfer credits the destination store by replaying the transfer's
// transfer_out ledger rows as transfer_in, at the same quantities and unit
// costs, and completes the document. Atomic as one transaction.
func (s *TransferService) ReceiveTransfer(ctx context.Context, input ReceiveTransferInput) (*transfer.StockTransfer, error) {
	var doc *transfer.StockTransfer
	err := s.stockSvc.withConflictRetry(ctx, func() error {
		doc = nil
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			doc, err = repos.Transfers().FindByID(ctx, input.TransferID)
			if err != nil {
				return err
			}

			fromStore, err := repos.Stores().FindByID(ctx, doc.FromStoreID)
			if err != nil {
				return err
			}

			ref := ledger.Reference{Type: ledger.ReferenceTypeStockTransfer, ID: doc.ID}
			dispatched, err := repos.Ledger().FindByReference(ctx, ref, ledger.TransactionTypeTransferOut)
			if err != nil {
				return err
			}
			if len(dispatched) == 0 {
				return shared.NewDomainError("EMPTY_TRANSFER", "Transfer has no dispatched items")
			}

			if err := doc.Receive(input.UserID, input.ReceivedDate); err != nil {
				return err
			}
			if input.Notes != "" {
				doc.Notes = input.Notes
			}

			userID := input.UserID
			for i := range dispatched {
				out := dispatched[i]
				_, err = s.stockSvc.recordTransactionIn(ctx, repos, RecordTransactionInput{
					StoreID:          doc.ToStoreID,
					ProductID:        out.ProductID,
					ProductVariantID: out.ProductVariantID,
					TransactionType:  ledger.TransactionTypeTransferIn,
					Quantity:         out.Quantity.Abs(),
					UnitCost:         out.UnitCost,
					UnitID:           out.UnitID,
					Reference:        &ref,
					Notes:            fmt.Sprintf("Transfer from %s", fromStore.Name),
					UserID:           &userID,
				})
				if err != nil {
					return err
				}
			}

			if err := repos.Transfers().Save(ctx, doc); err != nil {
				return err
			}

			s.logger.Info("stock transfer received",
				zap.String("transfer_number", doc.TransferNumber),
				zap.Int("lines", len(dispatched)),
			)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetTransferItems returns the dispatched ledger rows of a transfer
func (s *TransferService) GetTransferItems(ctx context.Context, transferID uuid.UUID) ([]ledger.Entry, error) {
	ref := ledger.Reference{Type: ledger.ReferenceTypeStockTransfer, ID: transferID}
	return s.stockSvc.ledgerRepo.FindByReference(ctx, ref, ledger.TransactionTypeTransferOut)
}

// hasAvailableStockIn checks availability for one transfer line within the
// open transaction.
func (s *TransferService) hasAvailableStockIn(ctx context.Context, repos TransactionalRepositories, storeID uuid.UUID, line TransferLineInput) (bool, error) {
	key := ledger.StockKey{StoreID: storeID, ProductID: line.ProductID, VariantID: line.ProductVariantID}
	balance, err := s.stockSvc.balanceIn(ctx, repos, key)
	if err != nil {
		return false, err
	}
	return balance.Quantity.GreaterThanOrEqual(line.Quantity), nil
}

// resolveLineCost returns the line's explicit unit cost, or the product's
// current cost price when none was given.
func (s *TransferService) resolveLineCost(ctx context.Context, repos TransactionalRepositories, line TransferLineInput) (decimal.Decimal, error) {
	if line.UnitCost != nil {
		return *line.UnitCost, nil
	}
	product, err := repos.Products().FindByID(ctx, line.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	return product.CostPrice, nil
}
