package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/Jacket-69/Necronomics/internal/ledger"
	"github.com/Jacket-69/Necronomics/internal/models"
	"github.com/Jacket-69/Necronomics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardHandler aggregates the dashboard view in a single request.
type DashboardHandler struct {
	DB             *gorm.DB
	BaseCurrencyID string
}

func NewDashboardHandler(db *gorm.DB, baseCurrencyID string) *DashboardHandler {
	return &DashboardHandler{DB: db, BaseCurrencyID: baseCurrencyID}
}

var spanishMonthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func spanishMonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return "Desconocido"
	}
	return spanishMonthNames[month-1]
}

type monthlyIncomeExpense struct {
	Income    int64  `json:"income"`
	Expense   int64  `json:"expense"`
	MonthName string `json:"monthName"`
	Year      int    `json:"year"`
}

type categorySpending struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Amount       int64   `json:"amount"`
	Percentage   float64 `json:"percentage"`
}

type recentTransaction struct {
	ID           string `json:"id"`
	AccountName  string `json:"accountName"`
	CategoryName string `json:"categoryName"`
	Amount       int64  `json:"amount"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	CurrencyCode string `json:"currencyCode"`
}

// GetDashboardData returns the balance summary, the current month's income
// and expense totals, the top spending categories and the most recent
// transactions in one payload. Amounts that cannot be converted to the base
// currency are skipped rather than counted at face value.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	var baseCode string
	if err := h.DB.Raw("SELECT code FROM currencies WHERE id = ?", h.BaseCurrencyID).
		Scan(&baseCode).Error; err != nil || baseCode == "" {
		baseCode = "CLP"
	}

	rates, err := ledger.LatestRates(h.DB, h.BaseCurrencyID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load exchange rates")
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	from := monthStart.Format("2006-01-02")
	to := monthStart.AddDate(0, 1, 0).Format("2006-01-02")

	// balance summary
	var accounts []accountBalance
	if err := h.DB.Raw(
		`SELECT a.id AS account_id, a.name AS account_name, a.balance AS balance, c.code AS currency_code
		 FROM accounts a
		 JOIN currencies c ON a.currency_id = c.id
		 WHERE a.is_active = 1`,
	).Scan(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load accounts")
		return
	}

	var consolidated int64
	hasAny := false
	for _, a := range accounts {
		if converted, ok := ledger.ConvertToBase(a.Balance, a.CurrencyCode, baseCode, rates); ok {
			consolidated += converted
			hasAny = true
		}
	}
	var consolidatedTotal *int64
	if hasAny {
		consolidatedTotal = &consolidated
	}

	// current-month income and expense in base currency
	var monthlyRows []struct {
		Amount       int64
		Type         string
		CurrencyCode string
	}
	if err := h.DB.Raw(
		`SELECT t.amount AS amount, t.type AS type, cur.code AS currency_code
		 FROM transactions t
		 JOIN accounts a ON t.account_id = a.id
		 JOIN currencies cur ON a.currency_id = cur.id
		 WHERE t.date >= ? AND t.date < ?`,
		from, to,
	).Scan(&monthlyRows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load monthly totals")
		return
	}

	monthly := monthlyIncomeExpense{
		MonthName: spanishMonthName(now.Month()),
		Year:      now.Year(),
	}
	for _, row := range monthlyRows {
		converted, ok := ledger.ConvertToBase(row.Amount, row.CurrencyCode, baseCode, rates)
		if !ok {
			continue
		}
		switch row.Type {
		case models.TypeIncome:
			monthly.Income += converted
		case models.TypeExpense:
			monthly.Expense += converted
		}
	}

	// current-month expenses grouped by root category (children roll up
	// into their parent)
	var spendingRows []struct {
		CategoryID   string
		CategoryName string
		Amount       int64
		CurrencyCode string
	}
	if err := h.DB.Raw(
		`SELECT COALESCE(parent.id, c.id) AS category_id,
		        COALESCE(parent.name, c.name) AS category_name,
		        t.amount AS amount, cur.code AS currency_code
		 FROM transactions t
		 JOIN categories c ON t.category_id = c.id
		 LEFT JOIN categories parent ON c.parent_id = parent.id
		 JOIN accounts a ON t.account_id = a.id
		 JOIN currencies cur ON a.currency_id = cur.id
		 WHERE t.type = 'expense' AND t.date >= ? AND t.date < ?`,
		from, to,
	).Scan(&spendingRows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category spending")
		return
	}

	names := make(map[string]string)
	totals := make(map[string]int64)
	for _, row := range spendingRows {
		converted, ok := ledger.ConvertToBase(row.Amount, row.CurrencyCode, baseCode, rates)
		if !ok {
			continue
		}
		names[row.CategoryID] = row.CategoryName
		totals[row.CategoryID] += converted
	}

	sorted := make([]categorySpending, 0, len(totals))
	var totalSpending int64
	for id, amount := range totals {
		sorted = append(sorted, categorySpending{CategoryID: id, CategoryName: names[id], Amount: amount})
		totalSpending += amount
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	topCategories := make([]categorySpending, 0, 6)
	if totalSpending > 0 {
		totalDec := decimal.NewFromInt(totalSpending)
		pct := func(amount int64) float64 {
			f, _ := decimal.NewFromInt(amount).
				Div(totalDec).
				Mul(decimal.NewFromInt(100)).
				Float64()
			return f
		}

		var otros int64
		for i, cs := range sorted {
			if i < 5 {
				cs.Percentage = pct(cs.Amount)
				topCategories = append(topCategories, cs)
			} else {
				otros += cs.Amount
			}
		}
		if otros > 0 {
			topCategories = append(topCategories, categorySpending{
				CategoryID:   "otros",
				CategoryName: "Otros",
				Amount:       otros,
				Percentage:   pct(otros),
			})
		}
	}

	// latest movement, joined for display
	var recent []recentTransaction
	if err := h.DB.Raw(
		`SELECT t.id AS id, a.name AS account_name, c.name AS category_name,
		        t.amount AS amount, t.type AS type, t.description AS description,
		        t.date AS date, cur.code AS currency_code
		 FROM transactions t
		 JOIN accounts a ON t.account_id = a.id
		 JOIN categories c ON t.category_id = c.id
		 JOIN currencies cur ON a.currency_id = cur.id
		 ORDER BY t.date DESC, t.created_at DESC
		 LIMIT 10`,
	).Scan(&recent).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load recent transactions")
		return
	}

	util.Success(c, util.Response{
		"balanceSummary": util.Response{
			"accounts":          accounts,
			"consolidatedTotal": consolidatedTotal,
			"baseCurrencyCode":  baseCode,
		},
		"monthlyIncomeExpense": monthly,
		"topCategories":        topCategories,
		"recentTransactions":   recent,
	})
}
