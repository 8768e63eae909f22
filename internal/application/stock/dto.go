package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// RecordTransactionInput carries everything needed to append one ledger entry.
// Quantity is the positive magnitude in UnitID's unit (the product's base unit
// when UnitID is nil); direction comes from TransactionType. UnitCost is per
// base unit - callers transacting in an alternate unit must convert the cost
// before calling.
type RecordTransactionInput struct {
	StoreID          uuid.UUID
	ProductID        uuid.UUID
	ProductVariantID *uuid.UUID
	TransactionType  ledger.TransactionType
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
	UnitID           *uuid.UUID
	Reference        *ledger.Reference
	Notes            string
	UserID           *uuid.UUID
	TransactionDate  *time.Time
}

// StockBalance is the current position of one stock key
type StockBalance struct {
	Quantity    decimal.Decimal `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// ZeroBalance is the balance of a key with no ledger history
func ZeroBalance() StockBalance {
	return StockBalance{
		Quantity:    decimal.Zero,
		Value:       decimal.Zero,
		AverageCost: decimal.Zero,
	}
}

// LowStockItem flags a product at or below its reorder level in a store
type LowStockItem struct {
	Product         catalog.Product `json:"product"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
}

// StockLevel is the latest position of one key in a store listing
type StockLevel struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductVariantID *uuid.UUID      `json:"product_variant_id,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	Value            decimal.Decimal `json:"value"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	LastMovementAt   time.Time       `json:"last_movement_at"`
}

// TransferLineInput is one product line on a transfer request. UnitCost is
// optional; when nil the product's current cost price is used.
type TransferLineInput struct {
	ProductID        uuid.UUID
	ProductVariantID *uuid.UUID
	Quantity         decimal.Decimal
	UnitCost         *decimal.Decimal
}

// CreateTransferInput is a request to dispatch stock between stores
type CreateTransferInput struct {
	FromStoreID  uuid.UUID
	ToStoreID    uuid.UUID
	TransferDate time.Time
	Lines        []TransferLineInput
	Notes        string
	UserID       uuid.UUID
}

// ReceiveTransferInput completes a transfer at the destination store
type ReceiveTransferInput struct {
	TransferID   uuid.UUID
	ReceivedDate time.Time
	Notes        string
	UserID       uuid.UUID
}

// GoodsReceiptLineInput is one received line of a purchase order. UnitCost is
// in UnitID's unit (per carton when the line was ordered in cartons); the
// service converts it to a per-base-unit cost before it reaches the ledger.
type GoodsReceiptLineInput struct {
	ProductID        uuid.UUID
	ProductVariantID *uuid.UUID
	UnitID           *uuid.UUID
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitCost         decimal.Decimal
}

// ReceiveGoodsInput records a goods receipt against a purchase order
type ReceiveGoodsInput struct {
	PurchaseOrderID uuid.UUID
	StoreID         uuid.UUID
	ReceivedDate    time.Time
	Lines           []GoodsReceiptLineInput
	Notes           string
	UserID          uuid.UUID
}

// AdjustmentLineInput is one corrected quantity on an adjustment request
type AdjustmentLineInput struct {
	ProductID        uuid.UUID
	ProductVariantID *uuid.UUID
	UnitID           *uuid.UUID
	Reason           string
	Quantity         decimal.Decimal
	UnitCost         *decimal.Decimal
	Notes            string
}

// CreateAdjustmentInput records a manual stock adjustment document
type CreateAdjustmentInput struct {
	StoreID        uuid.UUID
	AdjustmentDate time.Time
	Lines          []AdjustmentLineInput
	Notes          string
	UserID         uuid.UUID
}
