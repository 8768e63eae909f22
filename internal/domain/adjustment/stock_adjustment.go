package adjustment

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Reason categorizes a manual stock adjustment line and maps to the ledger
// transaction type that records it.
type Reason string

const (
	ReasonCorrectionIn  Reason = "correction_in"
	ReasonCorrectionOut Reason = "correction_out"
	ReasonDamage        Reason = "damage"
	ReasonLoss          Reason = "loss"
)

// IsValid returns true if the reason is a known adjustment reason
func (r Reason) IsValid() bool {
	switch r {
	case ReasonCorrectionIn, ReasonCorrectionOut, ReasonDamage, ReasonLoss:
		return true
	}
	return false
}

// TransactionType returns the ledger transaction type this reason records as
func (r Reason) TransactionType() ledger.TransactionType {
	switch r {
	case ReasonCorrectionIn:
		return ledger.TransactionTypeAdjustmentIn
	case ReasonDamage:
		return ledger.TransactionTypeDamage
	case ReasonLoss:
		return ledger.TransactionTypeLoss
	default:
		return ledger.TransactionTypeAdjustmentOut
	}
}

// StockAdjustment is a manual correction document. Each line becomes one
// ledger entry; the document is the entries' reference.
type StockAdjustment struct {
	shared.BaseEntity
	AdjustmentNumber string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	StoreID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	AdjustmentDate   time.Time        `gorm:"type:timestamptz;not null"`
	Notes            string           `gorm:"type:text"`
	CreatedBy        uuid.UUID        `gorm:"type:uuid;not null"`
	Lines            []AdjustmentLine `gorm:"foreignKey:AdjustmentID"`
}

// TableName returns the table name for GORM
func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}

// AdjustmentLine is one corrected quantity on an adjustment document
type AdjustmentLine struct {
	shared.BaseEntity
	AdjustmentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductVariantID *uuid.UUID      `gorm:"type:uuid"`
	UnitID           *uuid.UUID      `gorm:"type:uuid"`
	Reason           Reason          `gorm:"type:varchar(20);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Notes            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AdjustmentLine) TableName() string {
	return "stock_adjustment_lines"
}

// NewStockAdjustment creates an adjustment document for a store
func NewStockAdjustment(storeID, createdBy uuid.UUID, adjustmentDate time.Time) (*StockAdjustment, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Creating user cannot be empty")
	}
	if adjustmentDate.IsZero() {
		adjustmentDate = time.Now()
	}

	return &StockAdjustment{
		BaseEntity:       shared.NewBaseEntity(),
		AdjustmentNumber: generateAdjustmentNumber(),
		StoreID:          storeID,
		AdjustmentDate:   adjustmentDate,
		CreatedBy:        createdBy,
	}, nil
}

// AddLine appends an adjustment line to the document
func (a *StockAdjustment) AddLine(
	productID uuid.UUID,
	variantID *uuid.UUID,
	unitID *uuid.UUID,
	reason Reason,
	quantity, unitCost decimal.Decimal,
) (*AdjustmentLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown adjustment reason")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	line := AdjustmentLine{
		BaseEntity:       shared.NewBaseEntity(),
		AdjustmentID:     a.ID,
		ProductID:        productID,
		ProductVariantID: variantID,
		UnitID:           unitID,
		Reason:           reason,
		Quantity:         quantity,
		UnitCost:         unitCost,
	}
	a.Lines = append(a.Lines, line)
	return &a.Lines[len(a.Lines)-1], nil
}

func generateAdjustmentNumber() string {
	return fmt.Sprintf("ADJ-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(9000)+1000)
}
