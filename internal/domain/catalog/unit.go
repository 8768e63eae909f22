package catalog

import (
	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Unit is a measurement unit products are transacted in. A base unit stands
// alone (BaseUnitID nil, factor 1); a derived unit is expressed as a multiple
// of its base unit, e.g. box = 12 pcs.
type Unit struct {
	shared.BaseEntity
	Name             string          `gorm:"type:varchar(100);not null"`
	ShortName        string          `gorm:"type:varchar(20);not null"`
	BaseUnitID       *uuid.UUID      `gorm:"type:uuid;index"`
	ConversionFactor decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1"`
	IsActive         bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Unit) TableName() string {
	return "units"
}

// NewUnit creates a base unit
func NewUnit(name, shortName string) (*Unit, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_UNIT_NAME", "Unit name cannot be empty")
	}
	if shortName == "" {
		return nil, shared.NewDomainError("INVALID_UNIT_NAME", "Unit short name cannot be empty")
	}
	return &Unit{
		BaseEntity:       shared.NewBaseEntity(),
		Name:             name,
		ShortName:        shortName,
		ConversionFactor: decimal.NewFromInt(1),
		IsActive:         true,
	}, nil
}

// NewDerivedUnit creates a unit expressed as a multiple of a base unit
func NewDerivedUnit(name, shortName string, baseUnitID uuid.UUID, factor decimal.Decimal) (*Unit, error) {
	unit, err := NewUnit(name, shortName)
	if err != nil {
		return nil, err
	}
	if factor.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CONVERSION_FACTOR", "Conversion factor must be positive")
	}
	unit.BaseUnitID = &baseUnitID
	unit.ConversionFactor = factor
	return unit, nil
}

// IsBaseUnit returns true if this unit is not derived from another unit
func (u *Unit) IsBaseUnit() bool {
	return u.BaseUnitID == nil
}

// SameFamily returns true if both units are derived from the same base unit
func (u *Unit) SameFamily(other *Unit) bool {
	return u.BaseUnitID != nil && other.BaseUnitID != nil && *u.BaseUnitID == *other.BaseUnitID
}
