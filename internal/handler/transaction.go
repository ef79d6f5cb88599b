package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Jacket-69/Necronomics/internal/ledger"
	"github.com/Jacket-69/Necronomics/internal/models"
	"github.com/Jacket-69/Necronomics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionHandler serves ledger entry endpoints. Every mutation wraps
// the write and the balance recalculation in one database transaction.
type TransactionHandler struct {
	DB             *gorm.DB
	BaseCurrencyID string
}

func NewTransactionHandler(db *gorm.DB, baseCurrencyID string) *TransactionHandler {
	return &TransactionHandler{DB: db, BaseCurrencyID: baseCurrencyID}
}

type createTransactionReq struct {
	AccountID   string  `json:"accountId" binding:"required"`
	CategoryID  string  `json:"categoryId" binding:"required"`
	Amount      int64   `json:"amount" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Description string  `json:"description" binding:"max=255"`
	Date        string  `json:"date" binding:"required"`
	Notes       *string `json:"notes"`
}

type updateTransactionReq struct {
	AccountID   *string `json:"accountId"`
	CategoryID  *string `json:"categoryId"`
	Amount      *int64  `json:"amount"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Notes       *string `json:"notes"`
}

// CreateTransaction validates and inserts a ledger entry, recalculating the
// account balance in the same unit of work.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be greater than 0")
		return
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}
	if !models.ValidEntryType(req.Type) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "transaction type must be 'income' or 'expense'")
		return
	}

	var account models.Account
	if err := h.DB.First(&account, "id = ?", req.AccountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}
	if !account.IsActive {
		util.Error(c, http.StatusConflict, util.CodeConflict, "cannot add transactions to an archived account")
		return
	}

	var category models.Category
	if err := h.DB.First(&category, "id = ?", req.CategoryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load category")
		}
		return
	}
	if !category.IsActive {
		util.Error(c, http.StatusConflict, util.CodeConflict, "cannot use an inactive category")
		return
	}
	if category.Type != req.Type {
		util.Error(c, http.StatusConflict, util.CodeConflict,
			fmt.Sprintf("transaction type %q does not match category type %q", req.Type, category.Type))
		return
	}

	txn := models.Transaction{
		ID:          uuid.NewString(),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        req.Date,
		Notes:       req.Notes,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return ledger.RecalculateBalance(tx, req.AccountID)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save transaction")
		return
	}

	util.Success(c, util.Response{"transaction": txn})
}

// UpdateTransaction merges provided fields over the existing entry and
// recalculates the balance of every affected account.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req updateTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var existing models.Transaction
	if err := h.DB.First(&existing, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}

	oldAccountID := existing.AccountID

	if req.AccountID != nil {
		existing.AccountID = *req.AccountID
	}
	if req.CategoryID != nil {
		existing.CategoryID = *req.CategoryID
	}
	if req.Amount != nil {
		existing.Amount = *req.Amount
	}
	if req.Type != nil {
		existing.Type = *req.Type
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Date != nil {
		existing.Date = *req.Date
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}

	// Re-validate the merged row
	if err := util.ValidateAmount(existing.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be greater than 0")
		return
	}
	if !models.ValidEntryType(existing.Type) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "transaction type must be 'income' or 'expense'")
		return
	}
	if err := util.ValidateDate(existing.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}

	accountChanged := existing.AccountID != oldAccountID

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		if err := ledger.RecalculateBalance(tx, oldAccountID); err != nil {
			return err
		}
		if accountChanged {
			return ledger.RecalculateBalance(tx, existing.AccountID)
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save transaction")
		return
	}

	util.Success(c, util.Response{"transaction": existing})
}

// DeleteTransaction removes a ledger entry and recalculates its account's
// balance atomically.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	var existing models.Transaction
	if err := h.DB.First(&existing, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return ledger.RecalculateBalance(tx, existing.AccountID)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete transaction")
		return
	}

	util.Success(c, util.Response{"message": "transaction deleted"})
}

// transactionSortColumns whitelists ORDER BY targets for ListTransactions.
var transactionSortColumns = map[string]bool{
	"date":        true,
	"amount":      true,
	"description": true,
	"type":        true,
	"created_at":  true,
}

// ListTransactions lists ledger entries with filtering, sorting and
// pagination.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	base := h.DB.Model(&models.Transaction{})
	if v := c.Query("accountId"); v != "" {
		base = base.Where("account_id = ?", v)
	}
	if v := c.Query("categoryId"); v != "" {
		base = base.Where("category_id = ?", v)
	}
	if v := c.Query("type"); v == models.TypeIncome || v == models.TypeExpense {
		base = base.Where("type = ?", v)
	}
	if v := c.Query("dateFrom"); v != "" {
		base = base.Where("date >= ?", v)
	}
	if v := c.Query("dateTo"); v != "" {
		base = base.Where("date <= ?", v)
	}
	if v := c.Query("amountMin"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			base = base.Where("amount >= ?", n)
		}
	}
	if v := c.Query("amountMax"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			base = base.Where("amount <= ?", n)
		}
	}
	if v := c.Query("search"); v != "" {
		base = base.Where("description LIKE ?", "%"+v+"%")
	}

	// ORDER BY against a whitelist only
	sortBy := c.DefaultQuery("sortBy", "date")
	if !transactionSortColumns[sortBy] {
		sortBy = "date"
	}
	sortDir := c.DefaultQuery("sortDir", "DESC")
	if sortDir != "ASC" && sortDir != "DESC" {
		sortDir = "DESC"
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count transactions")
		return
	}

	var transactions []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Order(sortBy + " " + sortDir).
		Limit(pageSize).
		Offset(offset).
		Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	util.Success(c, util.Response{
		"data":       transactions,
		"total":      total,
		"page":       page,
		"pageSize":   pageSize,
		"totalPages": totalPages,
	})
}

type accountBalance struct {
	AccountID    string `json:"accountId"`
	AccountName  string `json:"accountName"`
	Balance      int64  `json:"balance"`
	CurrencyCode string `json:"currencyCode"`
}

// GetBalanceSummary lists per-account balances plus a consolidated total in
// the base currency. Accounts whose currency has no rate to base are left
// out of the total entirely.
func (h *TransactionHandler) GetBalanceSummary(c *gin.Context) {
	baseCurrencyID := c.DefaultQuery("baseCurrencyId", h.BaseCurrencyID)

	var baseCode string
	if err := h.DB.Raw("SELECT code FROM currencies WHERE id = ?", baseCurrencyID).
		Scan(&baseCode).Error; err != nil || baseCode == "" {
		baseCode = "CLP"
	}

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

	rates, err := ledger.LatestRates(h.DB, baseCurrencyID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load exchange rates")
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

	util.Success(c, util.Response{
		"accounts":          accounts,
		"consolidatedTotal": consolidatedTotal,
		"baseCurrencyCode":  baseCode,
	})
}
