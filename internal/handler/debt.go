package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jacket-69/Necronomics/internal/ledger"
	"github.com/Jacket-69/Necronomics/internal/models"
	"github.com/Jacket-69/Necronomics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DebtHandler serves debt and installment endpoints.
type DebtHandler struct {
	DB *gorm.DB
}

func NewDebtHandler(db *gorm.DB) *DebtHandler {
	return &DebtHandler{DB: db}
}

type createDebtReq struct {
	AccountID         string  `json:"accountId" binding:"required"`
	Description       string  `json:"description"`
	OriginalAmount    int64   `json:"originalAmount"`
	TotalInstallments int     `json:"totalInstallments"`
	MonthlyPayment    int64   `json:"monthlyPayment"`
	InterestRate      float64 `json:"interestRate"`
	StartDate         string  `json:"startDate"`
	Notes             *string `json:"notes"`
}

type updateDebtReq struct {
	Description  *string  `json:"description"`
	InterestRate *float64 `json:"interestRate"`
	IsActive     *bool    `json:"isActive"`
	Notes        *string  `json:"notes"`
}

type markPaidReq struct {
	CategoryID string `json:"categoryId" binding:"required"`
}

// loadDebt fetches a debt and recomputes its paid-installment counter from
// the installments table; the stored column is only a cache.
func (h *DebtHandler) loadDebt(id string) (*models.Debt, error) {
	var debt models.Debt
	if err := h.DB.First(&debt, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var paid int64
	if err := h.DB.Model(&models.Installment{}).
		Where("debt_id = ? AND status = ?", id, models.InstallmentPaid).
		Count(&paid).Error; err != nil {
		return nil, err
	}
	debt.PaidInstallments = int(paid)

	return &debt, nil
}

// debtDetail joins a debt with its installments, account name, next pending
// due date and the sum of pending amounts.
func (h *DebtHandler) debtDetail(debt *models.Debt) (util.Response, error) {
	var installments []models.Installment
	if err := h.DB.Where("debt_id = ?", debt.ID).
		Order("installment_number ASC").
		Find(&installments).Error; err != nil {
		return nil, err
	}

	var accountName string
	if err := h.DB.Raw("SELECT name FROM accounts WHERE id = ?", debt.AccountID).
		Scan(&accountName).Error; err != nil {
		return nil, err
	}

	var nextDueDate *string
	var remainingAmount int64
	for i := range installments {
		if installments[i].Status == models.InstallmentPending {
			if nextDueDate == nil {
				nextDueDate = &installments[i].DueDate
			}
			remainingAmount += installments[i].Amount
		}
	}

	return util.Response{
		"debt":            debt,
		"installments":    installments,
		"accountName":     accountName,
		"nextDueDate":     nextDueDate,
		"remainingAmount": remainingAmount,
	}, nil
}

// ListDebts lists debts with optional account/active/search filters,
// newest first.
func (h *DebtHandler) ListDebts(c *gin.Context) {
	q := h.DB.Model(&models.Debt{})
	if v := c.Query("accountId"); v != "" {
		q = q.Where("account_id = ?", v)
	}
	if v := c.Query("isActive"); v == "true" || v == "false" {
		q = q.Where("is_active = ?", v == "true")
	}
	if v := c.Query("search"); v != "" {
		q = q.Where("description LIKE ?", "%"+v+"%")
	}

	var debts []models.Debt
	if err := q.Order("created_at DESC").Find(&debts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list debts")
		return
	}

	// refresh the derived counters from the installments table
	for i := range debts {
		var paid int64
		if err := h.DB.Model(&models.Installment{}).
			Where("debt_id = ? AND status = ?", debts[i].ID, models.InstallmentPaid).
			Count(&paid).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list debts")
			return
		}
		debts[i].PaidInstallments = int(paid)
	}

	util.Success(c, util.Response{"debts": debts})
}

// GetDebtDetail returns a debt joined with its installments for the
// expanded card view.
func (h *DebtHandler) GetDebtDetail(c *gin.Context) {
	debt, err := h.loadDebt(c.Param("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "debt not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load debt")
		}
		return
	}

	detail, err := h.debtDetail(debt)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load debt")
		return
	}

	util.Success(c, detail)
}

// CreateDebt validates the debt terms, generates the installment schedule
// and inserts the debt row plus all installment rows as one unit of work.
// Any failure aborts the whole unit, leaving no partial debt behind.
func (h *DebtHandler) CreateDebt(c *gin.Context) {
	var req createDebtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if req.Description == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "description is required")
		return
	}
	if req.OriginalAmount <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "original amount must be greater than 0")
		return
	}
	if req.TotalInstallments <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "installment count must be greater than 0")
		return
	}
	if req.MonthlyPayment <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "monthly payment must be greater than 0")
		return
	}
	if req.StartDate == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start date is required")
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
		util.Error(c, http.StatusConflict, util.CodeConflict, "cannot create debts on an archived account")
		return
	}

	// The account's billing day anchors the schedule; without one the
	// start date's day-of-month is used.
	dueDates, err := ledger.InstallmentDueDates(req.StartDate, account.BillingDay, req.TotalInstallments)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start date must be YYYY-MM-DD")
		return
	}

	debt := models.Debt{
		ID:                uuid.NewString(),
		AccountID:         req.AccountID,
		Description:       req.Description,
		OriginalAmount:    req.OriginalAmount,
		TotalInstallments: req.TotalInstallments,
		PaidInstallments:  0,
		MonthlyPayment:    req.MonthlyPayment,
		InterestRate:      req.InterestRate,
		StartDate:         req.StartDate,
		IsActive:          true,
		Notes:             req.Notes,
	}

	installments := make([]models.Installment, 0, len(dueDates))
	for i, due := range dueDates {
		installments = append(installments, models.Installment{
			ID:                uuid.NewString(),
			DebtID:            debt.ID,
			InstallmentNumber: i + 1,
			DueDate:           due,
			Amount:            req.MonthlyPayment,
			Status:            models.InstallmentPending,
		})
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&debt).Error; err != nil {
			return err
		}
		return tx.Create(&installments).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save debt")
		return
	}

	detail, err := h.debtDetail(&debt)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load debt")
		return
	}

	util.Success(c, detail)
}

// UpdateDebt patches metadata only; the schedule and its installments are
// immutable after creation.
func (h *DebtHandler) UpdateDebt(c *gin.Context) {
	var req updateDebtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	debt, err := h.loadDebt(c.Param("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "debt not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load debt")
		}
		return
	}

	if req.Description != nil {
		debt.Description = *req.Description
	}
	if req.InterestRate != nil {
		debt.InterestRate = *req.InterestRate
	}
	if req.IsActive != nil {
		debt.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		debt.Notes = req.Notes
	}

	if err := h.DB.Save(debt).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save debt")
		return
	}

	util.Success(c, util.Response{"debt": debt})
}

// DeleteDebt removes a debt and all its installments. Transactions created
// from paid installments stay in the ledger; their installment
// back-reference dangles and readers tolerate that.
func (h *DebtHandler) DeleteDebt(c *gin.Context) {
	id := c.Param("id")

	var debt models.Debt
	if err := h.DB.First(&debt, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "debt not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load debt")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("debt_id = ?", id).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&debt).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete debt")
		return
	}

	util.Success(c, util.Response{"message": "debt deleted"})
}

// MarkInstallmentPaid records an installment payment. In one unit of work:
// an expense transaction dated today is inserted, the installment flips to
// paid with the payment linkage, the account balance is recalculated, and
// the debt's paid counter is recomputed. All four commit together or not
// at all.
func (h *DebtHandler) MarkInstallmentPaid(c *gin.Context) {
	var req markPaidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var inst models.Installment
	if err := h.DB.First(&inst, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "installment not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load installment")
		}
		return
	}

	if inst.Status == models.InstallmentPaid {
		util.Error(c, http.StatusConflict, util.CodeConflict, "this installment has already been paid")
		return
	}

	var debt models.Debt
	if err := h.DB.First(&debt, "id = ?", inst.DebtID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "debt not found for this installment")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load debt")
		}
		return
	}

	var account models.Account
	if err := h.DB.First(&account, "id = ?", debt.AccountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}
	if !account.IsActive {
		util.Error(c, http.StatusConflict, util.CodeConflict, "cannot record payments on an archived account")
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
	if category.Type != models.TypeExpense {
		util.Error(c, http.StatusConflict, util.CodeConflict, "installment payments require an expense category")
		return
	}

	today := time.Now().Format("2006-01-02")
	txn := models.Transaction{
		ID:          uuid.NewString(),
		AccountID:   debt.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      inst.Amount,
		Type:        models.TypeExpense,
		Description: fmt.Sprintf("Pago cuota %d - %s", inst.InstallmentNumber, debt.Description),
		Date:        today,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Installment{}).
			Where("id = ?", inst.ID).
			Updates(map[string]interface{}{
				"status":              models.InstallmentPaid,
				"actual_payment_date": today,
				"transaction_id":      txn.ID,
			}).Error; err != nil {
			return err
		}
		if err := ledger.RecalculateBalance(tx, debt.AccountID); err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE debts SET paid_installments = (
				SELECT COUNT(*) FROM installments WHERE debt_id = ? AND status = 'paid'
			 ) WHERE id = ?`,
			inst.DebtID, inst.DebtID,
		).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to record payment")
		return
	}

	if err := h.DB.First(&inst, "id = ?", inst.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load installment")
		return
	}

	util.Success(c, util.Response{"installment": inst})
}

type creditUtilization struct {
	AccountID                string `json:"accountId"`
	AccountName              string `json:"accountName"`
	CreditLimit              int64  `json:"creditLimit"`
	CurrentBalance           int64  `json:"currentBalance"`
	RemainingDebtCommitments int64  `json:"remainingDebtCommitments"`
	AvailableCredit          int64  `json:"availableCredit"`
}

// GetCreditUtilization reports, per active credit-card account, the
// available credit and the pending installment commitments of its active
// debts. Pending installments of inactive debts deliberately do not count.
func (h *DebtHandler) GetCreditUtilization(c *gin.Context) {
	var accounts []models.Account
	if err := h.DB.Where("type = ? AND is_active = ? AND credit_limit IS NOT NULL",
		models.AccountTypeCreditCard, true).
		Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load accounts")
		return
	}

	utilizations := make([]creditUtilization, 0, len(accounts))
	for _, account := range accounts {
		var remaining int64
		err := h.DB.Raw(
			`SELECT COALESCE(SUM(i.amount), 0)
			 FROM installments i
			 JOIN debts d ON i.debt_id = d.id
			 WHERE d.account_id = ? AND d.is_active = 1 AND i.status = 'pending'`,
			account.ID,
		).Scan(&remaining).Error
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load commitments")
			return
		}

		utilizations = append(utilizations, creditUtilization{
			AccountID:                account.ID,
			AccountName:              account.Name,
			CreditLimit:              *account.CreditLimit,
			CurrentBalance:           account.Balance,
			RemainingDebtCommitments: remaining,
			AvailableCredit:          *account.CreditLimit - account.Balance,
		})
	}

	util.Success(c, util.Response{"utilizations": utilizations})
}

type debtProjectionEntry struct {
	DebtID          string `json:"debtId"`
	DebtDescription string `json:"debtDescription"`
	Amount          int64  `json:"amount"`
}

type monthlyProjection struct {
	Month string                `json:"month"`
	Debts []debtProjectionEntry `json:"debts"`
	Total int64                 `json:"total"`
}

// GetPaymentProjections groups the pending installments of active debts
// due in the next six months (from today inclusive to the boundary
// exclusive) by month and debt.
func (h *DebtHandler) GetPaymentProjections(c *gin.Context) {
	now := time.Now()
	from := now.Format("2006-01-02")
	to := now.AddDate(0, 6, 0).Format("2006-01-02")

	var rows []struct {
		DebtID      string
		Description string
		Month       string
		Total       int64
	}
	err := h.DB.Raw(
		`SELECT i.debt_id AS debt_id, d.description AS description,
		        strftime('%Y-%m', i.due_date) AS month, SUM(i.amount) AS total
		 FROM installments i
		 JOIN debts d ON i.debt_id = d.id
		 WHERE i.status = 'pending'
		   AND i.due_date >= ?
		   AND i.due_date < ?
		   AND d.is_active = 1
		 GROUP BY i.debt_id, d.description, month
		 ORDER BY month, d.description`,
		from, to,
	).Scan(&rows).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load projections")
		return
	}

	projections := make([]monthlyProjection, 0)
	for _, row := range rows {
		entry := debtProjectionEntry{
			DebtID:          row.DebtID,
			DebtDescription: row.Description,
			Amount:          row.Total,
		}

		if n := len(projections); n > 0 && projections[n-1].Month == row.Month {
			projections[n-1].Debts = append(projections[n-1].Debts, entry)
			projections[n-1].Total += row.Total
		} else {
			projections = append(projections, monthlyProjection{
				Month: row.Month,
				Debts: []debtProjectionEntry{entry},
				Total: row.Total,
			})
		}
	}

	util.Success(c, util.Response{"projections": projections})
}
