package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

func TestTransactionType_IsValid(t *testing.T) {
	valid := []TransactionType{
		TransactionTypeReceipt,
		TransactionTypeIssue,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut,
		TransactionTypeAdjustmentIn,
		TransactionTypeAdjustmentOut,
		TransactionTypeReturn,
		TransactionTypeDamage,
		TransactionTypeLoss,
	}
	for _, tt := range valid {
		assert.True(t, tt.IsValid(), "%s should be valid", tt)
	}
	assert.False(t, TransactionType("purchase").IsValid())
	assert.False(t, TransactionType("").IsValid())
}

func TestTransactionType_IsIncrease(t *testing.T) {
	tests := []struct {
		txType   TransactionType
		increase bool
	}{
		{TransactionTypeReceipt, true},
		{TransactionTypeTransferIn, true},
		{TransactionTypeAdjustmentIn, true},
		{TransactionTypeReturn, true},
		{TransactionTypeIssue, false},
		{TransactionTypeTransferOut, false},
		{TransactionTypeAdjustmentOut, false},
		{TransactionTypeDamage, false},
		{TransactionTypeLoss, false},
	}
	for _, tt := range tests {
		t.Run(tt.txType.String(), func(t *testing.T) {
			assert.Equal(t, tt.increase, tt.txType.IsIncrease())
		})
	}
}

func TestNewEntry_SignDerivation(t *testing.T) {
	key := NewStockKey(uuid.New(), uuid.New())
	qty := decimal.NewFromInt(5)
	cost := decimal.NewFromInt(10)

	t.Run("increase keeps positive sign", func(t *testing.T) {
		entry, err := NewEntry(key, TransactionTypeReceipt, qty, qty, cost, decimal.NewFromInt(5), decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.True(t, entry.Quantity.Equal(qty))
		assert.True(t, entry.BaseQuantityChange.Equal(qty))
		assert.True(t, entry.IsIncrease())
		assert.True(t, entry.Magnitude().Equal(qty))
	})

	t.Run("decrease is stored negated", func(t *testing.T) {
		entry, err := NewEntry(key, TransactionTypeIssue, qty, qty, cost, decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, entry.Quantity.Equal(qty.Neg()))
		assert.True(t, entry.BaseQuantityChange.Equal(qty.Neg()))
		assert.False(t, entry.IsIncrease())
		assert.True(t, entry.Magnitude().Equal(qty))
	})
}

func TestNewEntry_Validation(t *testing.T) {
	storeID := uuid.New()
	productID := uuid.New()
	one := decimal.NewFromInt(1)

	tests := []struct {
		name     string
		key      StockKey
		txType   TransactionType
		quantity decimal.Decimal
		baseQty  decimal.Decimal
		unitCost decimal.Decimal
		wantCode string
	}{
		{"missing store", StockKey{ProductID: productID}, TransactionTypeReceipt, one, one, one, "INVALID_STORE"},
		{"missing product", StockKey{StoreID: storeID}, TransactionTypeReceipt, one, one, one, "INVALID_PRODUCT"},
		{"unknown type", NewStockKey(storeID, productID), TransactionType("refund"), one, one, one, "INVALID_TRANSACTION_TYPE"},
		{"zero quantity", NewStockKey(storeID, productID), TransactionTypeReceipt, decimal.Zero, one, one, "INVALID_QUANTITY"},
		{"negative base quantity", NewStockKey(storeID, productID), TransactionTypeReceipt, one, decimal.NewFromInt(-1), one, "INVALID_QUANTITY"},
		{"negative cost", NewStockKey(storeID, productID), TransactionTypeReceipt, one, one, decimal.NewFromInt(-1), "INVALID_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEntry(tt.key, tt.txType, tt.quantity, tt.baseQty, tt.unitCost, decimal.Zero, decimal.Zero)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestEntry_Builders(t *testing.T) {
	key := NewVariantStockKey(uuid.New(), uuid.New(), uuid.New())
	entry, err := NewEntry(key, TransactionTypeReceipt, decimal.NewFromInt(3), decimal.NewFromInt(3), decimal.NewFromInt(2), decimal.NewFromInt(3), decimal.NewFromInt(6))
	require.NoError(t, err)

	unitID := uuid.New()
	userID := uuid.New()
	ref, err := NewReference(ReferenceTypeGoodsReceivedNote, uuid.New())
	require.NoError(t, err)
	entry.WithUnit(unitID).WithReference(ref).WithNotes("initial load").WithCreatedBy(userID)

	require.NotNil(t, entry.UnitID)
	assert.Equal(t, unitID, *entry.UnitID)
	require.NotNil(t, entry.ReferenceType)
	assert.Equal(t, ReferenceTypeGoodsReceivedNote, *entry.ReferenceType)
	require.NotNil(t, entry.ReferenceID)
	assert.Equal(t, ref.ID, *entry.ReferenceID)
	assert.Equal(t, "initial load", entry.Notes)
	require.NotNil(t, entry.CreatedBy)
	assert.Equal(t, userID, *entry.CreatedBy)

	assert.Equal(t, key, entry.Key())
}
