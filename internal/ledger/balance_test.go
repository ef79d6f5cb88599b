package ledger

import (
	"path/filepath"
	"testing"

	"github.com/Jacket-69/Necronomics/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Currency{},
		&models.ExchangeRate{},
		&models.Account{},
		&models.Transaction{},
	))
	return db
}

func seedAccount(t *testing.T, db *gorm.DB) models.Account {
	t.Helper()

	account := models.Account{
		ID:         uuid.NewString(),
		Name:       "Cuenta Corriente",
		Type:       models.AccountTypeBank,
		CurrencyID: "cur_clp",
		IsActive:   true,
	}
	require.NoError(t, db.Create(&account).Error)
	return account
}

func seedTransaction(t *testing.T, db *gorm.DB, accountID, txnType string, amount int64) {
	t.Helper()

	txn := models.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CategoryID:  "cat_otros",
		Amount:      amount,
		Type:        txnType,
		Description: "test entry",
		Date:        "2024-06-01",
	}
	require.NoError(t, db.Create(&txn).Error)
}

func accountBalanceOf(t *testing.T, db *gorm.DB, accountID string) int64 {
	t.Helper()

	var account models.Account
	require.NoError(t, db.First(&account, "id = ?", accountID).Error)
	return account.Balance
}

func TestRecalculateBalanceSignedSum(t *testing.T) {
	db := newTestDB(t)
	account := seedAccount(t, db)

	seedTransaction(t, db, account.ID, models.TypeIncome, 100000)
	seedTransaction(t, db, account.ID, models.TypeExpense, 30000)
	seedTransaction(t, db, account.ID, models.TypeExpense, 20000)

	require.NoError(t, RecalculateBalance(db, account.ID))
	require.Equal(t, int64(50000), accountBalanceOf(t, db, account.ID))
}

func TestRecalculateBalanceIdempotent(t *testing.T) {
	db := newTestDB(t)
	account := seedAccount(t, db)

	seedTransaction(t, db, account.ID, models.TypeIncome, 75000)

	require.NoError(t, RecalculateBalance(db, account.ID))
	require.NoError(t, RecalculateBalance(db, account.ID))
	require.Equal(t, int64(75000), accountBalanceOf(t, db, account.ID))
}

func TestRecalculateBalanceEmptyLedger(t *testing.T) {
	db := newTestDB(t)
	account := seedAccount(t, db)

	// give it a stale cached value first
	require.NoError(t, db.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("balance", 99999).Error)

	require.NoError(t, RecalculateBalance(db, account.ID))
	require.Equal(t, int64(0), accountBalanceOf(t, db, account.ID))
}

func TestRecalculateBalanceScopedToAccount(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db)
	b := seedAccount(t, db)

	seedTransaction(t, db, a.ID, models.TypeIncome, 10000)
	seedTransaction(t, db, b.ID, models.TypeIncome, 20000)

	require.NoError(t, RecalculateBalance(db, a.ID))
	require.Equal(t, int64(10000), accountBalanceOf(t, db, a.ID))
	require.Equal(t, int64(0), accountBalanceOf(t, db, b.ID))
}
