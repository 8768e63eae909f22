package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// ValuationMethod determines how outgoing stock is costed
type ValuationMethod string

const (
	// ValuationWeightedAverage costs issues at the running average cost of stock on hand
	ValuationWeightedAverage ValuationMethod = "weighted_average"
	// ValuationFIFO is a simplified FIFO: issues are costed at the caller-supplied
	// unit cost rather than tracked receipt lots. Kept for compatibility with
	// existing ledger data; not standard FIFO costing.
	ValuationFIFO ValuationMethod = "fifo"
)

// IsValid returns true if the valuation method is a known method
func (m ValuationMethod) IsValid() bool {
	return m == ValuationWeightedAverage || m == ValuationFIFO
}

// Product represents a product/SKU in the catalog.
// UnitID is the product's base unit: the unit in which its stock balance is
// always kept, regardless of the unit a transaction was entered in.
type Product struct {
	shared.BaseEntity
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Description     string          `gorm:"type:text"`
	Barcode         string          `gorm:"type:varchar(50);index"`
	UnitID          uuid.UUID       `gorm:"type:uuid;not null"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	ValuationMethod ValuationMethod `gorm:"type:varchar(20);not null;default:'weighted_average'"`
	TrackInventory  bool            `gorm:"not null;default:true"`
	ReorderLevel    decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0"`
	ReorderQuantity decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0"`
	Status          ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with the given base unit
func NewProduct(code, name string, unitID uuid.UUID) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Product base unit cannot be empty")
	}

	return &Product{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            strings.ToUpper(code),
		Name:            name,
		UnitID:          unitID,
		CostPrice:       decimal.Zero,
		SellingPrice:    decimal.Zero,
		ValuationMethod: ValuationWeightedAverage,
		TrackInventory:  true,
		ReorderLevel:    decimal.Zero,
		ReorderQuantity: decimal.Zero,
		Status:          ProductStatusActive,
	}, nil
}

// SetValuationMethod changes the product's costing method
func (p *Product) SetValuationMethod(method ValuationMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_VALUATION_METHOD", "Unknown valuation method")
	}
	p.ValuationMethod = method
	return nil
}

// SetReorderPolicy sets the low-stock threshold and suggested reorder quantity
func (p *Product) SetReorderPolicy(level, quantity decimal.Decimal) error {
	if level.IsNegative() || quantity.IsNegative() {
		return shared.NewDomainError("INVALID_REORDER_POLICY", "Reorder level and quantity cannot be negative")
	}
	p.ReorderLevel = level
	p.ReorderQuantity = quantity
	return nil
}

// UpdateCostPrice sets a new cost price
func (p *Product) UpdateCostPrice(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	p.CostPrice = cost
	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Deactivate marks the product inactive
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
}
