package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/catalog"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func TestComputeBalanceValue(t *testing.T) {
	tests := []struct {
		name       string
		method     catalog.ValuationMethod
		balanceQty string
		balanceVal string
		deltaQty   string
		unitCost   string
		isIncrease bool
		want       string
	}{
		{
			name:   "increase valued at its own cost regardless of method",
			method: catalog.ValuationWeightedAverage,
			balanceQty: "10", balanceVal: "50",
			deltaQty: "5", unitCost: "8",
			isIncrease: true,
			want:       "90",
		},
		{
			name:   "fifo increase same as weighted average increase",
			method: catalog.ValuationFIFO,
			balanceQty: "10", balanceVal: "50",
			deltaQty: "5", unitCost: "8",
			isIncrease: true,
			want:       "90",
		},
		{
			name:   "weighted average decrease uses running average",
			method: catalog.ValuationWeightedAverage,
			balanceQty: "15", balanceVal: "90",
			deltaQty: "5", unitCost: "999", // ignored
			isIncrease: false,
			want:       "60",
		},
		{
			name:   "weighted average decrease rounds to cents",
			method: catalog.ValuationWeightedAverage,
			balanceQty: "3", balanceVal: "10",
			deltaQty: "1", unitCost: "0",
			isIncrease: false,
			want:       "6.67",
		},
		{
			name:   "weighted average decrease on empty balance costs nothing",
			method: catalog.ValuationWeightedAverage,
			balanceQty: "0", balanceVal: "0",
			deltaQty: "5", unitCost: "999",
			isIncrease: false,
			want:       "0",
		},
		{
			name:   "weighted average decrease on negative balance costs nothing",
			method: catalog.ValuationWeightedAverage,
			balanceQty: "-2", balanceVal: "0",
			deltaQty: "5", unitCost: "999",
			isIncrease: false,
			want:       "0",
		},
		{
			name:   "fifo decrease uses the supplied cost",
			method: catalog.ValuationFIFO,
			balanceQty: "15", balanceVal: "90",
			deltaQty: "5", unitCost: "4",
			isIncrease: false,
			want:       "70",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalanceValue(
				tt.method,
				d(t, tt.balanceQty),
				d(t, tt.balanceVal),
				d(t, tt.deltaQty),
				d(t, tt.unitCost),
				tt.isIncrease,
			)
			assert.True(t, got.Equal(d(t, tt.want)), "want %s, got %s", tt.want, got)
		})
	}
}

func TestAverageCost(t *testing.T) {
	assert.True(t, AverageCost(d(t, "10"), d(t, "55")).Equal(d(t, "5.5")))
	assert.True(t, AverageCost(d(t, "3"), d(t, "10")).Equal(d(t, "3.33")))
	assert.True(t, AverageCost(decimal.Zero, d(t, "50")).IsZero())
	assert.True(t, AverageCost(d(t, "-4"), d(t, "50")).IsZero())
}

func TestReferenceType_IsValid(t *testing.T) {
	for _, rt := range []ReferenceType{
		ReferenceTypeSale,
		ReferenceTypePurchaseOrder,
		ReferenceTypeGoodsReceivedNote,
		ReferenceTypeStockTransfer,
		ReferenceTypeStockAdjustment,
	} {
		assert.True(t, rt.IsValid(), "%s should be valid", rt)
	}
	assert.False(t, ReferenceType("invoice").IsValid())
}

func TestNewReference(t *testing.T) {
	id := uuid.New()

	ref, err := NewReference(ReferenceTypeStockTransfer, id)
	require.NoError(t, err)
	assert.Equal(t, ReferenceTypeStockTransfer, ref.Type)
	assert.Equal(t, id, ref.ID)

	_, err = NewReference(ReferenceType("invoice"), id)
	assert.Error(t, err)

	_, err = NewReference(ReferenceTypeSale, uuid.Nil)
	assert.Error(t, err)
}
