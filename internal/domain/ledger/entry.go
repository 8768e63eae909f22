package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of stock movement recorded in the ledger
type TransactionType string

const (
	// TransactionTypeReceipt represents stock received into a store (goods receipt)
	TransactionTypeReceipt TransactionType = "receipt"
	// TransactionTypeIssue represents stock leaving a store (sale)
	TransactionTypeIssue TransactionType = "issue"
	// TransactionTypeTransferIn represents stock received from another store
	TransactionTypeTransferIn TransactionType = "transfer_in"
	// TransactionTypeTransferOut represents stock dispatched to another store
	TransactionTypeTransferOut TransactionType = "transfer_out"
	// TransactionTypeAdjustmentIn represents a positive manual adjustment
	TransactionTypeAdjustmentIn TransactionType = "adjustment_in"
	// TransactionTypeAdjustmentOut represents a negative manual adjustment
	TransactionTypeAdjustmentOut TransactionType = "adjustment_out"
	// TransactionTypeReturn represents stock returned by a customer
	TransactionTypeReturn TransactionType = "return"
	// TransactionTypeDamage represents stock written off as damaged
	TransactionTypeDamage TransactionType = "damage"
	// TransactionTypeLoss represents stock written off as lost
	TransactionTypeLoss TransactionType = "loss"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is part of the closed set
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeReceipt,
		TransactionTypeIssue,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut,
		TransactionTypeAdjustmentIn,
		TransactionTypeAdjustmentOut,
		TransactionTypeReturn,
		TransactionTypeDamage,
		TransactionTypeLoss:
		return true
	}
	return false
}

// IsIncrease returns true if this transaction type increases the balance.
// Every other valid type decreases it.
func (t TransactionType) IsIncrease() bool {
	switch t {
	case TransactionTypeReceipt,
		TransactionTypeTransferIn,
		TransactionTypeAdjustmentIn,
		TransactionTypeReturn:
		return true
	}
	return false
}

// StockKey identifies one running balance in the ledger: a (store, product,
// variant) tuple. Entries for different keys never contend.
type StockKey struct {
	StoreID   uuid.UUID
	ProductID uuid.UUID
	VariantID *uuid.UUID
}

// NewStockKey creates a key without a variant dimension
func NewStockKey(storeID, productID uuid.UUID) StockKey {
	return StockKey{StoreID: storeID, ProductID: productID}
}

// NewVariantStockKey creates a key with a variant dimension
func NewVariantStockKey(storeID, productID, variantID uuid.UUID) StockKey {
	return StockKey{StoreID: storeID, ProductID: productID, VariantID: &variantID}
}

// Entry is one immutable stock ledger row. Once created an entry is never
// updated or deleted; corrections are new entries. BalanceQuantity and
// BalanceValue are the running totals for the entry's key after this
// transaction, chained off the immediately preceding entry only.
type Entry struct {
	shared.BaseEntity
	// Sequence is the database-assigned insertion ordinal and the only
	// authoritative order of the ledger. created_at is the application clock:
	// it can tie within a microsecond and drift between servers.
	Sequence           int64           `gorm:"->"`
	StoreID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_key,priority:1"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_key,priority:2"`
	ProductVariantID   *uuid.UUID      `gorm:"type:uuid;index:idx_ledger_key,priority:3"`
	UnitID             *uuid.UUID      `gorm:"type:uuid"`
	TransactionType    TransactionType `gorm:"type:varchar(20);not null;index"`
	ReferenceType      *ReferenceType  `gorm:"type:varchar(30);index:idx_ledger_ref,priority:1"`
	ReferenceID        *uuid.UUID      `gorm:"type:uuid;index:idx_ledger_ref,priority:2"`
	Quantity           decimal.Decimal `gorm:"type:decimal(15,3);not null"` // signed, in the original unit
	BaseQuantityChange decimal.Decimal `gorm:"type:decimal(15,3);not null"` // signed, in base units
	UnitCost           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	BalanceQuantity    decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	BalanceValue       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Notes              string          `gorm:"type:text"`
	CreatedBy          *uuid.UUID      `gorm:"type:uuid"`
	TransactionDate    time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "stock_ledger"
}

// NewEntry creates a ledger entry. quantity and baseQuantity are the positive
// magnitudes in the original unit and in base units; the sign stored on the
// entry is derived from the transaction type.
func NewEntry(
	key StockKey,
	txType TransactionType,
	quantity decimal.Decimal,
	baseQuantity decimal.Decimal,
	unitCost decimal.Decimal,
	balanceQuantity decimal.Decimal,
	balanceValue decimal.Decimal,
) (*Entry, error) {
	if key.StoreID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if key.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if baseQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Base quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	signedQty := quantity
	signedBaseQty := baseQuantity
	if !txType.IsIncrease() {
		signedQty = quantity.Neg()
		signedBaseQty = baseQuantity.Neg()
	}

	return &Entry{
		BaseEntity:         shared.NewBaseEntity(),
		StoreID:            key.StoreID,
		ProductID:          key.ProductID,
		ProductVariantID:   key.VariantID,
		TransactionType:    txType,
		Quantity:           signedQty,
		BaseQuantityChange: signedBaseQty,
		UnitCost:           unitCost,
		BalanceQuantity:    balanceQuantity,
		BalanceValue:       balanceValue,
		TransactionDate:    time.Now(),
	}, nil
}

// WithUnit records the unit the original transaction was expressed in
func (e *Entry) WithUnit(unitID uuid.UUID) *Entry {
	e.UnitID = &unitID
	return e
}

// WithReference links the causing business document
func (e *Entry) WithReference(ref Reference) *Entry {
	e.ReferenceType = &ref.Type
	e.ReferenceID = &ref.ID
	return e
}

// WithNotes attaches free-form notes
func (e *Entry) WithNotes(notes string) *Entry {
	e.Notes = notes
	return e
}

// WithCreatedBy records the acting user
func (e *Entry) WithCreatedBy(userID uuid.UUID) *Entry {
	e.CreatedBy = &userID
	return e
}

// WithTransactionDate overrides the transaction timestamp
func (e *Entry) WithTransactionDate(date time.Time) *Entry {
	e.TransactionDate = date
	return e
}

// Key returns the stock key this entry belongs to
func (e *Entry) Key() StockKey {
	return StockKey{StoreID: e.StoreID, ProductID: e.ProductID, VariantID: e.ProductVariantID}
}

// IsIncrease returns true if this entry increased the balance
func (e *Entry) IsIncrease() bool {
	return e.TransactionType.IsIncrease()
}

// Magnitude returns the unsigned base-unit quantity moved by this entry
func (e *Entry) Magnitude() decimal.Decimal {
	return e.BaseQuantityChange.Abs()
}
