package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit timestamps every persisted row
// shares, from catalog records to ledger entries. IDs are assigned by the
// application (UUIDv4), not the database, so a document and the ledger rows
// referencing it can be built before the transaction that stores them
// commits. Note UUIDv4 IDs carry no ordering; the ledger keeps its own
// insertion ordinal.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh identity with both timestamps at now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
