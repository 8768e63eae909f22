package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

type stubUnitRepository struct {
	units map[uuid.UUID]*Unit
}

func (r *stubUnitRepository) FindByID(_ context.Context, id uuid.UUID) (*Unit, error) {
	if u, ok := r.units[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubUnitRepository) FindAll(_ context.Context, _ shared.Filter) ([]Unit, error) {
	result := make([]Unit, 0, len(r.units))
	for _, u := range r.units {
		result = append(result, *u)
	}
	return result, nil
}

func (r *stubUnitRepository) Save(_ context.Context, unit *Unit) error {
	r.units[unit.ID] = unit
	return nil
}

type stubProductUnitRepository struct {
	overrides []*ProductUnit
}

func (r *stubProductUnitRepository) FindByProductAndUnit(_ context.Context, productID, unitID uuid.UUID) (*ProductUnit, error) {
	for _, pu := range r.overrides {
		if pu.ProductID == productID && pu.UnitID == unitID {
			return pu, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubProductUnitRepository) FindByProduct(_ context.Context, productID uuid.UUID) ([]ProductUnit, error) {
	result := make([]ProductUnit, 0)
	for _, pu := range r.overrides {
		if pu.ProductID == productID {
			result = append(result, *pu)
		}
	}
	return result, nil
}

func (r *stubProductUnitRepository) Save(_ context.Context, productUnit *ProductUnit) error {
	r.overrides = append(r.overrides, productUnit)
	return nil
}

type converterFixture struct {
	converter *UnitConverter
	unitRepo  *stubUnitRepository
	puRepo    *stubProductUnitRepository
	pcs       *Unit
	product   *Product
}

func newConverterFixture(t *testing.T) *converterFixture {
	t.Helper()
	unitRepo := &stubUnitRepository{units: map[uuid.UUID]*Unit{}}
	puRepo := &stubProductUnitRepository{}

	pcs, err := NewUnit("Piece", "pcs")
	require.NoError(t, err)
	unitRepo.units[pcs.ID] = pcs

	product, err := NewProduct("P-001", "Test Product", pcs.ID)
	require.NoError(t, err)

	return &converterFixture{
		converter: NewUnitConverter(unitRepo, puRepo),
		unitRepo:  unitRepo,
		puRepo:    puRepo,
		pcs:       pcs,
		product:   product,
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestUnitConverter_ToBaseUnit_NilAndOwnUnit(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	got, err := f.converter.ToBaseUnit(ctx, f.product, dec(t, "7.5"), nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "7.5")))

	got, err = f.converter.ToBaseUnit(ctx, f.product, dec(t, "7.5"), &f.pcs.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "7.5")))
}

func TestUnitConverter_ToBaseUnit_ProductOverrideWins(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	// a global box = 12 pcs...
	box, err := NewDerivedUnit("Box", "box", f.pcs.ID, dec(t, "12"))
	require.NoError(t, err)
	f.unitRepo.units[box.ID] = box

	// ...but this product packs 10 per box
	pu, err := NewProductUnit(f.product.ID, box.ID, dec(t, "10"))
	require.NoError(t, err)
	require.NoError(t, f.puRepo.Save(ctx, pu))

	got, err := f.converter.ToBaseUnit(ctx, f.product, dec(t, "3"), &box.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "30")), "override factor 10 beats global factor 12, got %s", got)
}

func TestUnitConverter_ToBaseUnit_DerivedUnitOfBase(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	box, err := NewDerivedUnit("Box", "box", f.pcs.ID, dec(t, "12"))
	require.NoError(t, err)
	f.unitRepo.units[box.ID] = box

	got, err := f.converter.ToBaseUnit(ctx, f.product, dec(t, "2"), &box.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "24")))
}

func TestUnitConverter_ToBaseUnit_BaseDerivedFromUnit(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	// product kept in kilograms, which are derived from grams
	gram, err := NewUnit("Gram", "g")
	require.NoError(t, err)
	f.unitRepo.units[gram.ID] = gram
	kg, err := NewDerivedUnit("Kilogram", "kg", gram.ID, dec(t, "1000"))
	require.NoError(t, err)
	f.unitRepo.units[kg.ID] = kg

	product, err := NewProduct("P-002", "Bulk Product", kg.ID)
	require.NoError(t, err)

	got, err := f.converter.ToBaseUnit(ctx, product, dec(t, "500"), &gram.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "0.5")))
}

func TestUnitConverter_ToBaseUnit_Siblings(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	gram, err := NewUnit("Gram", "g")
	require.NoError(t, err)
	f.unitRepo.units[gram.ID] = gram
	kg, err := NewDerivedUnit("Kilogram", "kg", gram.ID, dec(t, "1000"))
	require.NoError(t, err)
	f.unitRepo.units[kg.ID] = kg
	pound, err := NewDerivedUnit("Pound", "lb", gram.ID, dec(t, "453.6"))
	require.NoError(t, err)
	f.unitRepo.units[pound.ID] = pound

	product, err := NewProduct("P-003", "Weighed Product", kg.ID)
	require.NoError(t, err)

	// 2 lb = 907.2 g = 0.9072 kg, rounded to 3 places
	got, err := f.converter.ToBaseUnit(ctx, product, dec(t, "2"), &pound.ID)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "0.907")), "got %s", got)
}

func TestUnitConverter_ToBaseUnit_Incompatible(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	liter, err := NewUnit("Liter", "l")
	require.NoError(t, err)
	f.unitRepo.units[liter.ID] = liter

	_, err = f.converter.ToBaseUnit(ctx, f.product, dec(t, "1"), &liter.ID)
	assert.ErrorIs(t, err, shared.ErrIncompatibleUnits)
}

func TestUnitConverter_ToBaseUnit_UnknownUnit(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	unknown := uuid.New()
	_, err := f.converter.ToBaseUnit(ctx, f.product, dec(t, "1"), &unknown)
	assert.ErrorIs(t, err, shared.ErrInvalidUnit)
}

func TestUnitConverter_FromBaseUnit(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	box, err := NewDerivedUnit("Box", "box", f.pcs.ID, dec(t, "12"))
	require.NoError(t, err)
	f.unitRepo.units[box.ID] = box

	t.Run("own unit passes through", func(t *testing.T) {
		got, err := f.converter.FromBaseUnit(ctx, f.product, dec(t, "5"), f.pcs.ID)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec(t, "5")))
	})

	t.Run("derived unit divides", func(t *testing.T) {
		got, err := f.converter.FromBaseUnit(ctx, f.product, dec(t, "30"), box.ID)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec(t, "2.5")))
	})

	t.Run("override wins", func(t *testing.T) {
		pu, err := NewProductUnit(f.product.ID, box.ID, dec(t, "10"))
		require.NoError(t, err)
		require.NoError(t, f.puRepo.Save(ctx, pu))

		got, err := f.converter.FromBaseUnit(ctx, f.product, dec(t, "30"), box.ID)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec(t, "3")))
	})

	t.Run("sibling fallback is not supported", func(t *testing.T) {
		gram, err := NewUnit("Gram", "g")
		require.NoError(t, err)
		f.unitRepo.units[gram.ID] = gram

		_, err = f.converter.FromBaseUnit(ctx, f.product, dec(t, "1"), gram.ID)
		assert.ErrorIs(t, err, shared.ErrIncompatibleUnits)
	})
}

func TestUnitConverter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	box, err := NewDerivedUnit("Box", "box", f.pcs.ID, dec(t, "12"))
	require.NoError(t, err)
	f.unitRepo.units[box.ID] = box

	crate, err := NewDerivedUnit("Crate", "crt", f.pcs.ID, dec(t, "8"))
	require.NoError(t, err)
	f.unitRepo.units[crate.ID] = crate
	override, err := NewProductUnit(f.product.ID, crate.ID, dec(t, "10"))
	require.NoError(t, err)
	require.NoError(t, f.puRepo.Save(ctx, override))

	tests := []struct {
		name     string
		unitID   uuid.UUID
		quantity string
	}{
		{"base unit", f.pcs.ID, "7.5"},
		{"derived unit", box.ID, "2.5"},
		{"overridden unit", crate.ID, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty := dec(t, tt.quantity)
			base, err := f.converter.ToBaseUnit(ctx, f.product, qty, &tt.unitID)
			require.NoError(t, err)
			back, err := f.converter.FromBaseUnit(ctx, f.product, base, tt.unitID)
			require.NoError(t, err)
			assert.True(t, back.Equal(qty), "round trip of %s: got %s", qty, back)
		})
	}
}

func TestUnitConverter_AvailableUnits(t *testing.T) {
	ctx := context.Background()
	f := newConverterFixture(t)

	box, err := NewDerivedUnit("Box", "box", f.pcs.ID, dec(t, "12"))
	require.NoError(t, err)
	f.unitRepo.units[box.ID] = box
	pallet, err := NewDerivedUnit("Pallet", "plt", f.pcs.ID, dec(t, "480"))
	require.NoError(t, err)
	f.unitRepo.units[pallet.ID] = pallet

	buyBox, err := NewProductUnit(f.product.ID, box.ID, dec(t, "12"))
	require.NoError(t, err)
	buyBox.IsPurchaseUnit = true
	require.NoError(t, f.puRepo.Save(ctx, buyBox))

	sellPallet, err := NewProductUnit(f.product.ID, pallet.ID, dec(t, "480"))
	require.NoError(t, err)
	sellPallet.IsSaleUnit = true
	require.NoError(t, f.puRepo.Save(ctx, sellPallet))

	t.Run("all", func(t *testing.T) {
		options, err := f.converter.AvailableUnits(ctx, f.product, UnitUsageAll)
		require.NoError(t, err)
		require.Len(t, options, 3)
		assert.Equal(t, f.pcs.ID, options[0].UnitID)
		assert.True(t, options[0].ConversionFactor.Equal(decimal.NewFromInt(1)))
		assert.True(t, options[0].IsDefault)
	})

	t.Run("purchase", func(t *testing.T) {
		options, err := f.converter.AvailableUnits(ctx, f.product, UnitUsagePurchase)
		require.NoError(t, err)
		require.Len(t, options, 2)
		assert.Equal(t, box.ID, options[1].UnitID)
	})

	t.Run("sale", func(t *testing.T) {
		options, err := f.converter.AvailableUnits(ctx, f.product, UnitUsageSale)
		require.NoError(t, err)
		require.Len(t, options, 2)
		assert.Equal(t, pallet.ID, options[1].UnitID)
	})
}
