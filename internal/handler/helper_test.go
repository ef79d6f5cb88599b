package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Jacket-69/Necronomics/internal/database"
	"github.com/Jacket-69/Necronomics/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testBaseCurrencyID = "cur_clp"

// newTestDB opens a throwaway sqlite database, migrated and seeded like the
// real one.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.Seed(db))
	return db
}

// newTestRouter registers all API routes without the auth and audit
// middleware, so handlers can be exercised directly.
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")

	accountHandler := NewAccountHandler(db)
	api.GET("/accounts", accountHandler.ListAccounts)
	api.GET("/accounts/:id", accountHandler.GetAccount)
	api.POST("/accounts", accountHandler.CreateAccount)
	api.PUT("/accounts/:id", accountHandler.UpdateAccount)
	api.POST("/accounts/:id/archive", accountHandler.ArchiveAccount)
	api.DELETE("/accounts/:id", accountHandler.DeleteAccount)
	api.GET("/currencies", accountHandler.ListCurrencies)

	categoryHandler := NewCategoryHandler(db)
	api.GET("/categories", categoryHandler.ListCategories)
	api.GET("/categories/:id", categoryHandler.GetCategory)
	api.POST("/categories", categoryHandler.CreateCategory)
	api.PUT("/categories/:id", categoryHandler.UpdateCategory)
	api.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	transactionHandler := NewTransactionHandler(db, testBaseCurrencyID)
	api.GET("/transactions", transactionHandler.ListTransactions)
	api.POST("/transactions", transactionHandler.CreateTransaction)
	api.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	api.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)
	api.GET("/balance-summary", transactionHandler.GetBalanceSummary)

	debtHandler := NewDebtHandler(db)
	api.GET("/debts", debtHandler.ListDebts)
	api.GET("/debts/credit-utilization", debtHandler.GetCreditUtilization)
	api.GET("/debts/projections", debtHandler.GetPaymentProjections)
	api.GET("/debts/:id", debtHandler.GetDebtDetail)
	api.POST("/debts", debtHandler.CreateDebt)
	api.PUT("/debts/:id", debtHandler.UpdateDebt)
	api.DELETE("/debts/:id", debtHandler.DeleteDebt)
	api.POST("/installments/:id/pay", debtHandler.MarkInstallmentPaid)

	dashboardHandler := NewDashboardHandler(db, testBaseCurrencyID)
	api.GET("/dashboard", dashboardHandler.GetDashboardData)

	exportHandler := NewExportHandler(db)
	api.GET("/export/csv", exportHandler.ExportCSV)
	api.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := NewLogHandler(db)
	api.GET("/logs", logHandler.ListLogs)

	authHandler := NewAuthHandler(db, "test-secret", 24)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// decodeData unmarshals the data field of a success envelope into out.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Data, "expected a success envelope, got message %q", env.Message)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

func makeAccount(t *testing.T, db *gorm.DB, accType string, mutate ...func(*models.Account)) models.Account {
	t.Helper()

	account := models.Account{
		ID:         uuid.NewString(),
		Name:       "Cuenta " + accType,
		Type:       accType,
		CurrencyID: testBaseCurrencyID,
		IsActive:   true,
	}
	for _, fn := range mutate {
		fn(&account)
	}
	// gorm's default:true tag replaces a zero-value bool on insert, so an
	// archived account needs an explicit update to persist IsActive=false.
	wantActive := account.IsActive
	require.NoError(t, db.Create(&account).Error)
	if !wantActive {
		require.NoError(t, db.Model(&models.Account{}).Where("id = ?", account.ID).
			Update("is_active", false).Error)
		account.IsActive = false
	}
	return account
}

func makeTransaction(t *testing.T, db *gorm.DB, accountID, categoryID, txnType string, amount int64, date string) models.Transaction {
	t.Helper()

	txn := models.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      amount,
		Type:        txnType,
		Description: "seeded entry",
		Date:        date,
	}
	require.NoError(t, db.Create(&txn).Error)
	return txn
}

func balanceOf(t *testing.T, db *gorm.DB, accountID string) int64 {
	t.Helper()

	var account models.Account
	require.NoError(t, db.First(&account, "id = ?", accountID).Error)
	return account.Balance
}
