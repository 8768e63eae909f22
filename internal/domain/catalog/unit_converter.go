package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuantityPrecision is the number of decimal places kept for quantities.
const QuantityPrecision = 3

// UnitConverter resolves quantities between a product's base unit and any
// other unit the product can be transacted in.
//
// Resolution order for ToBaseUnit:
//  1. no unit / the product's own unit: quantity is already in base units
//  2. a ProductUnit override for (product, unit): quantity * factor
//  3. global Unit records, one hop only: direct parent/child of the product's
//     base unit, or a sibling sharing the same base unit
//
// Anything else is an incompatible conversion and fails the calling
// transaction; the converter never silently assumes a 1:1 factor.
type UnitConverter struct {
	unitRepo        UnitRepository
	productUnitRepo ProductUnitRepository
}

// NewUnitConverter creates a new UnitConverter
func NewUnitConverter(unitRepo UnitRepository, productUnitRepo ProductUnitRepository) *UnitConverter {
	return &UnitConverter{
		unitRepo:        unitRepo,
		productUnitRepo: productUnitRepo,
	}
}

// ToBaseUnit converts quantity expressed in fromUnitID into the product's
// base unit. A nil fromUnitID means the quantity is already in base units.
func (c *UnitConverter) ToBaseUnit(ctx context.Context, product *Product, quantity decimal.Decimal, fromUnitID *uuid.UUID) (decimal.Decimal, error) {
	if fromUnitID == nil || *fromUnitID == product.UnitID {
		return quantity, nil
	}

	// Product-specific override wins over any global family conversion.
	pu, err := c.productUnitRepo.FindByProductAndUnit(ctx, product.ID, *fromUnitID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, err
	}
	if pu != nil {
		return pu.ToBaseQuantity(quantity).Round(QuantityPrecision), nil
	}

	fromUnit, err := c.loadUnit(ctx, *fromUnitID)
	if err != nil {
		return decimal.Zero, err
	}
	baseUnit, err := c.loadUnit(ctx, product.UnitID)
	if err != nil {
		return decimal.Zero, err
	}

	switch {
	case fromUnit.BaseUnitID != nil && *fromUnit.BaseUnitID == baseUnit.ID:
		// fromUnit is expressed directly in the product's base unit
		return quantity.Mul(fromUnit.ConversionFactor).Round(QuantityPrecision), nil
	case baseUnit.BaseUnitID != nil && *baseUnit.BaseUnitID == fromUnit.ID:
		// the product's base unit is expressed in fromUnit
		return quantity.Div(baseUnit.ConversionFactor).Round(QuantityPrecision), nil
	case fromUnit.SameFamily(baseUnit):
		// siblings: go through the common base unit
		inCommonBase := quantity.Mul(fromUnit.ConversionFactor)
		return inCommonBase.Div(baseUnit.ConversionFactor).Round(QuantityPrecision), nil
	default:
		return decimal.Zero, shared.ErrIncompatibleUnits
	}
}

// FromBaseUnit converts a base-unit quantity into toUnitID. The fallback is
// narrower than ToBaseUnit: beyond a product override, only a unit expressed
// directly in the product's base unit can be targeted.
func (c *UnitConverter) FromBaseUnit(ctx context.Context, product *Product, baseQuantity decimal.Decimal, toUnitID uuid.UUID) (decimal.Decimal, error) {
	if toUnitID == product.UnitID {
		return baseQuantity, nil
	}

	pu, err := c.productUnitRepo.FindByProductAndUnit(ctx, product.ID, toUnitID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, err
	}
	if pu != nil {
		return pu.FromBaseQuantity(baseQuantity).Round(QuantityPrecision), nil
	}

	toUnit, err := c.loadUnit(ctx, toUnitID)
	if err != nil {
		return decimal.Zero, err
	}

	if toUnit.BaseUnitID != nil && *toUnit.BaseUnitID == product.UnitID {
		return baseQuantity.Div(toUnit.ConversionFactor).Round(QuantityPrecision), nil
	}

	return decimal.Zero, shared.ErrIncompatibleUnits
}

// AvailableUnits returns the units a product can be transacted in: always the
// base unit (factor 1), plus every ProductUnit override, optionally filtered
// to purchase or sale units.
func (c *UnitConverter) AvailableUnits(ctx context.Context, product *Product, usage UnitUsage) ([]ProductUnitOption, error) {
	baseUnit, err := c.loadUnit(ctx, product.UnitID)
	if err != nil {
		return nil, err
	}

	options := []ProductUnitOption{{
		UnitID:           baseUnit.ID,
		Name:             baseUnit.Name,
		ShortName:        baseUnit.ShortName,
		ConversionFactor: decimal.NewFromInt(1),
		IsDefault:        true,
	}}

	productUnits, err := c.productUnitRepo.FindByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	for _, pu := range productUnits {
		if usage == UnitUsagePurchase && !pu.IsPurchaseUnit {
			continue
		}
		if usage == UnitUsageSale && !pu.IsSaleUnit {
			continue
		}
		unit, err := c.loadUnit(ctx, pu.UnitID)
		if err != nil {
			return nil, err
		}
		options = append(options, ProductUnitOption{
			UnitID:           unit.ID,
			Name:             unit.Name,
			ShortName:        unit.ShortName,
			ConversionFactor: pu.ConversionFactor,
			SellingPrice:     pu.SellingPrice,
			CostPrice:        pu.CostPrice,
			IsDefault:        pu.IsDefault,
		})
	}
	return options, nil
}

func (c *UnitConverter) loadUnit(ctx context.Context, id uuid.UUID) (*Unit, error) {
	unit, err := c.unitRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidUnit
		}
		return nil, err
	}
	return unit, nil
}

// UnitUsage filters AvailableUnits to a transaction context
type UnitUsage string

const (
	UnitUsageAll      UnitUsage = "all"
	UnitUsagePurchase UnitUsage = "purchase"
	UnitUsageSale     UnitUsage = "sale"
)

// ProductUnitOption describes one unit a product can be transacted in
type ProductUnitOption struct {
	UnitID           uuid.UUID        `json:"unit_id"`
	Name             string           `json:"name"`
	ShortName        string           `json:"short_name"`
	ConversionFactor decimal.Decimal  `json:"conversion_factor"`
	SellingPrice     *decimal.Decimal `json:"selling_price,omitempty"`
	CostPrice        *decimal.Decimal `json:"cost_price,omitempty"`
	IsDefault        bool             `json:"is_default"`
}
