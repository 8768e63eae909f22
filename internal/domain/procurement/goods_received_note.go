package procurement

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GRNStatus represents the state of a goods received note
type GRNStatus string

const (
	GRNStatusCompleted GRNStatus = "completed"
	GRNStatusCancelled GRNStatus = "cancelled"
)

// GoodsReceivedNote (GRN) confirms physical receipt of purchase-order items
// into a store. Each line becomes a receipt entry in the stock ledger; the
// GRN itself is the ledger entries' reference document.
type GoodsReceivedNote struct {
	shared.BaseEntity
	GRNNumber       string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	StoreID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReceivedDate    time.Time  `gorm:"type:timestamptz;not null"`
	Status          GRNStatus  `gorm:"type:varchar(20);not null;default:'completed'"`
	Notes           string     `gorm:"type:text"`
	ReceivedBy      uuid.UUID  `gorm:"type:uuid;not null"`
	Lines           []GRNLine  `gorm:"foreignKey:GRNID"`
}

// TableName returns the table name for GORM
func (GoodsReceivedNote) TableName() string {
	return "goods_received_notes"
}

// GRNLine is one received line on a goods received note. UnitCost is in the
// line's transacted unit (UnitID), not necessarily the product's base unit.
type GRNLine struct {
	shared.BaseEntity
	GRNID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductVariantID *uuid.UUID      `gorm:"type:uuid"`
	UnitID           *uuid.UUID      `gorm:"type:uuid"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
}

// TableName returns the table name for GORM
func (GRNLine) TableName() string {
	return "grn_lines"
}

// NewGoodsReceivedNote creates a completed GRN for a purchase order
func NewGoodsReceivedNote(purchaseOrderID, storeID, receivedBy uuid.UUID, receivedDate time.Time) (*GoodsReceivedNote, error) {
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PURCHASE_ORDER", "Purchase order ID cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if receivedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Receiving user cannot be empty")
	}
	if receivedDate.IsZero() {
		receivedDate = time.Now()
	}

	return &GoodsReceivedNote{
		BaseEntity:      shared.NewBaseEntity(),
		GRNNumber:       generateGRNNumber(),
		PurchaseOrderID: purchaseOrderID,
		StoreID:         storeID,
		ReceivedDate:    receivedDate,
		Status:          GRNStatusCompleted,
		ReceivedBy:      receivedBy,
	}, nil
}

// AddLine appends a received line to the GRN
func (g *GoodsReceivedNote) AddLine(
	productID uuid.UUID,
	variantID *uuid.UUID,
	unitID *uuid.UUID,
	quantityOrdered, quantityReceived, unitCost decimal.Decimal,
) (*GRNLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantityReceived.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	line := GRNLine{
		BaseEntity:       shared.NewBaseEntity(),
		GRNID:            g.ID,
		ProductID:        productID,
		ProductVariantID: variantID,
		UnitID:           unitID,
		QuantityOrdered:  quantityOrdered,
		QuantityReceived: quantityReceived,
		UnitCost:         unitCost,
	}
	g.Lines = append(g.Lines, line)
	return &g.Lines[len(g.Lines)-1], nil
}

func generateGRNNumber() string {
	return fmt.Sprintf("GRN-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(9000)+1000)
}
