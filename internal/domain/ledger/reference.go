package ledger

import (
	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
)

// ReferenceType identifies the kind of business document that caused a ledger
// entry. Modelled as a closed enum rather than a free string so reporting and
// reversal code can switch exhaustively over the kinds.
type ReferenceType string

const (
	// ReferenceTypeSale is a point-of-sale checkout
	ReferenceTypeSale ReferenceType = "sale"
	// ReferenceTypePurchaseOrder is a purchase order
	ReferenceTypePurchaseOrder ReferenceType = "purchase_order"
	// ReferenceTypeGoodsReceivedNote is a goods received note (GRN)
	ReferenceTypeGoodsReceivedNote ReferenceType = "goods_received_note"
	// ReferenceTypeStockTransfer is an inter-store stock transfer
	ReferenceTypeStockTransfer ReferenceType = "stock_transfer"
	// ReferenceTypeStockAdjustment is a manual stock adjustment document
	ReferenceTypeStockAdjustment ReferenceType = "stock_adjustment"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid returns true if the reference type is a known document kind
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypeSale,
		ReferenceTypePurchaseOrder,
		ReferenceTypeGoodsReceivedNote,
		ReferenceTypeStockTransfer,
		ReferenceTypeStockAdjustment:
		return true
	}
	return false
}

// Reference is a typed link to the business document that caused a ledger
// entry.
type Reference struct {
	Type ReferenceType
	ID   uuid.UUID
}

// NewReference creates a validated document reference
func NewReference(refType ReferenceType, id uuid.UUID) (Reference, error) {
	if !refType.IsValid() {
		return Reference{}, shared.NewDomainError("INVALID_REFERENCE_TYPE", "Unknown reference type")
	}
	if id == uuid.Nil {
		return Reference{}, shared.NewDomainError("INVALID_REFERENCE_ID", "Reference ID cannot be empty")
	}
	return Reference{Type: refType, ID: id}, nil
}
