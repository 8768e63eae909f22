package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/ledger"
	"github.com/retailcore/backend/internal/domain/shared"
)

// newMockLedgerRepository creates a GormStockLedgerRepository with a mocked SQL connection
func newMockLedgerRepository(t *testing.T) (*GormStockLedgerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockLedgerRepository(gormDB), mock, mockDB
}

func ledgerColumns() []string {
	return []string{
		"id", "sequence", "created_at", "updated_at",
		"store_id", "product_id", "product_variant_id", "unit_id",
		"transaction_type", "reference_type", "reference_id",
		"quantity", "base_quantity_change", "unit_cost",
		"balance_quantity", "balance_value",
		"notes", "created_by", "transaction_date",
	}
}

func TestGormStockLedgerRepository_FindLatestForKey(t *testing.T) {
	t.Run("returns latest entry", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()
		storeID := uuid.New()
		productID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(ledgerColumns()).AddRow(
			entryID, int64(7), now, now,
			storeID, productID, nil, nil,
			"receipt", nil, nil,
			decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.NewFromFloat(2.50),
			decimal.NewFromInt(10), decimal.NewFromInt(25),
			"", nil, now,
		)

		mock.ExpectQuery(`SELECT \* FROM "stock_ledger" WHERE \(store_id = \$1 AND product_id = \$2\) AND product_variant_id IS NULL ORDER BY sequence DESC`).
			WithArgs(storeID, productID, 1).
			WillReturnRows(rows)

		entry, err := repo.FindLatestForKey(context.Background(), ledger.NewStockKey(storeID, productID))

		require.NoError(t, err)
		assert.Equal(t, entryID, entry.ID)
		assert.Equal(t, int64(7), entry.Sequence)
		assert.True(t, entry.BalanceQuantity.Equal(decimal.NewFromInt(10)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing history to ErrNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		storeID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_ledger"`).
			WithArgs(storeID, productID, 1).
			WillReturnRows(sqlmock.NewRows(ledgerColumns()))

		_, err := repo.FindLatestForKey(context.Background(), ledger.NewStockKey(storeID, productID))

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by variant when key has one", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		storeID := uuid.New()
		productID := uuid.New()
		variantID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(ledgerColumns()).AddRow(
			uuid.New(), int64(1), now, now,
			storeID, productID, variantID, nil,
			"receipt", nil, nil,
			decimal.NewFromInt(5), decimal.NewFromInt(5), decimal.NewFromInt(3),
			decimal.NewFromInt(5), decimal.NewFromInt(15),
			"", nil, now,
		)

		mock.ExpectQuery(`SELECT \* FROM "stock_ledger" WHERE \(store_id = \$1 AND product_id = \$2\) AND product_variant_id = \$3`).
			WithArgs(storeID, productID, variantID, 1).
			WillReturnRows(rows)

		entry, err := repo.FindLatestForKey(context.Background(), ledger.NewVariantStockKey(storeID, productID, variantID))

		require.NoError(t, err)
		require.NotNil(t, entry.ProductVariantID)
		assert.Equal(t, variantID, *entry.ProductVariantID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLedgerRepository_FindLatestForKeyLocked(t *testing.T) {
	t.Run("issues FOR UPDATE", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		storeID := uuid.New()
		productID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(ledgerColumns()).AddRow(
			uuid.New(), int64(2), now, now,
			storeID, productID, nil, nil,
			"receipt", nil, nil,
			decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.NewFromInt(2),
			decimal.NewFromInt(10), decimal.NewFromInt(20),
			"", nil, now,
		)

		mock.ExpectQuery(`SELECT \* FROM "stock_ledger" .* FOR UPDATE`).
			WithArgs(storeID, productID, 1).
			WillReturnRows(rows)

		_, err := repo.FindLatestForKeyLocked(context.Background(), ledger.NewStockKey(storeID, productID))

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLedgerRepository_FindForKey(t *testing.T) {
	t.Run("history orders by sequence, not created_at", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		storeID := uuid.New()
		productID := uuid.New()
		now := time.Now()

		// created_at ties are irrelevant: the insertion ordinal decides
		rows := sqlmock.NewRows(ledgerColumns()).AddRow(
			uuid.New(), int64(1), now, now,
			storeID, productID, nil, nil,
			"receipt", nil, nil,
			decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.NewFromInt(2),
			decimal.NewFromInt(10), decimal.NewFromInt(20),
			"", nil, now,
		).AddRow(
			uuid.New(), int64(2), now, now,
			storeID, productID, nil, nil,
			"issue", nil, nil,
			decimal.NewFromInt(-4), decimal.NewFromInt(-4), decimal.NewFromInt(2),
			decimal.NewFromInt(6), decimal.NewFromInt(12),
			"", nil, now,
		)

		mock.ExpectQuery(`SELECT \* FROM "stock_ledger" WHERE \(store_id = \$1 AND product_id = \$2\) AND product_variant_id IS NULL ORDER BY sequence ASC`).
			WithArgs(storeID, productID).
			WillReturnRows(rows)

		entries, err := repo.FindForKey(context.Background(), ledger.NewStockKey(storeID, productID), shared.Filter{})

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(1), entries[0].Sequence)
		assert.Equal(t, int64(2), entries[1].Sequence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLedgerRepository_FindByReference(t *testing.T) {
	t.Run("narrows by transaction type", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		refID := uuid.New()
		ref, err := ledger.NewReference(ledger.ReferenceTypeStockTransfer, refID)
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT \* FROM "stock_ledger" WHERE \(reference_type = \$1 AND reference_id = \$2\) AND transaction_type = \$3`).
			WithArgs("stock_transfer", refID, "transfer_out").
			WillReturnRows(sqlmock.NewRows(ledgerColumns()))

		entries, err := repo.FindByReference(context.Background(), ref, ledger.TransactionTypeTransferOut)

		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty type matches all", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		refID := uuid.New()
		ref, err := ledger.NewReference(ledger.ReferenceTypeStockTransfer, refID)
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT \* FROM "stock_ledger" WHERE reference_type = \$1 AND reference_id = \$2`).
			WithArgs("stock_transfer", refID).
			WillReturnRows(sqlmock.NewRows(ledgerColumns()))

		_, err = repo.FindByReference(context.Background(), ref, "")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLedgerRepository_CountForKey(t *testing.T) {
	repo, mock, mockDB := newMockLedgerRepository(t)
	defer mockDB.Close()

	storeID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_ledger"`).
		WithArgs(storeID, productID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountForKey(context.Background(), ledger.NewStockKey(storeID, productID))

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockLedgerRepository_Create(t *testing.T) {
	repo, mock, mockDB := newMockLedgerRepository(t)
	defer mockDB.Close()

	key := ledger.NewStockKey(uuid.New(), uuid.New())
	entry, err := ledger.NewEntry(
		key, ledger.TransactionTypeReceipt,
		decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.NewFromInt(2),
		decimal.NewFromInt(10), decimal.NewFromInt(20),
	)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "stock_ledger"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), entry)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
