package transfer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a stock transfer.
// pending -> in_transit -> received; cancellation is only possible while
// pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in_transit"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// IsValid returns true if the status is a known lifecycle state
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// StockTransfer is the document tracking an inter-store stock movement.
// The actual quantities live in the stock ledger: dispatch writes
// transfer_out entries referencing this document, receipt replays them as
// transfer_in at the destination. The two legs are separate workflow steps
// and are not atomic with each other.
type StockTransfer struct {
	shared.BaseEntity
	TransferNumber    string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	FromStoreID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ToStoreID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status            Status     `gorm:"type:varchar(20);not null;default:'pending'"`
	TransferDate      time.Time  `gorm:"type:timestamptz;not null"`
	Notes             string     `gorm:"type:text"`
	InitiatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy        *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt        *time.Time `gorm:"type:timestamptz"`
	ReceivedBy        *uuid.UUID `gorm:"type:uuid"`
	ActualReceiptDate *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// NewStockTransfer creates a pending transfer between two distinct stores
func NewStockTransfer(fromStoreID, toStoreID, initiatedBy uuid.UUID, transferDate time.Time) (*StockTransfer, error) {
	if fromStoreID == uuid.Nil || toStoreID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if fromStoreID == toStoreID {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Source and destination stores must differ")
	}
	if initiatedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Initiating user cannot be empty")
	}
	if transferDate.IsZero() {
		transferDate = time.Now()
	}

	return &StockTransfer{
		BaseEntity:     shared.NewBaseEntity(),
		TransferNumber: generateTransferNumber(),
		FromStoreID:    fromStoreID,
		ToStoreID:      toStoreID,
		Status:         StatusPending,
		TransferDate:   transferDate,
		InitiatedBy:    initiatedBy,
	}, nil
}

// Approve moves a pending transfer into transit
func (t *StockTransfer) Approve(userID uuid.UUID) error {
	if t.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transfers can be approved")
	}
	now := time.Now()
	t.Status = StatusInTransit
	t.ApprovedBy = &userID
	t.ApprovedAt = &now
	return nil
}

// Receive completes the transfer at the destination store
func (t *StockTransfer) Receive(userID uuid.UUID, receiptDate time.Time) error {
	if t.Status != StatusPending && t.Status != StatusInTransit {
		return shared.NewDomainError("INVALID_STATE", "Only pending or in-transit transfers can be received")
	}
	if receiptDate.IsZero() {
		receiptDate = time.Now()
	}
	t.Status = StatusReceived
	t.ReceivedBy = &userID
	t.ActualReceiptDate = &receiptDate
	return nil
}

// Cancel aborts a transfer that has not been dispatched
func (t *StockTransfer) Cancel() error {
	if t.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending transfers can be cancelled")
	}
	t.Status = StatusCancelled
	return nil
}

func generateTransferNumber() string {
	return fmt.Sprintf("TR-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(9000)+1000)
}
