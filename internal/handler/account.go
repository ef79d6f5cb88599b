package handler

import (
	"net/http"

	"github.com/Jacket-69/Necronomics/internal/models"
	"github.com/Jacket-69/Necronomics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountHandler serves account and currency endpoints.
type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

type createAccountReq struct {
	Name        string `json:"name" binding:"required,max=64"`
	Type        string `json:"type" binding:"required"`
	CurrencyID  string `json:"currencyId" binding:"required"`
	CreditLimit *int64 `json:"creditLimit"`
	BillingDay  *int   `json:"billingDay"`
}

type updateAccountReq struct {
	Name        *string `json:"name"`
	CurrencyID  *string `json:"currencyId"`
	CreditLimit *int64  `json:"creditLimit"`
	BillingDay  *int    `json:"billingDay"`
}

// ListAccounts returns all active accounts, ordered by type then name.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var accounts []models.Account
	if err := h.DB.Where("is_active = ?", true).
		Order("type, name").
		Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list accounts")
		return
	}

	util.Success(c, util.Response{"accounts": accounts})
}

// GetAccount returns a single account by ID, active or not.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	var account models.Account
	if err := h.DB.First(&account, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}

	util.Success(c, util.Response{"account": account})
}

// CreateAccount creates an account. Credit-card accounts must carry both a
// credit limit and a billing day from the start.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if !models.ValidAccountType(req.Type) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown account type")
		return
	}
	if req.Type == models.AccountTypeCreditCard {
		if req.CreditLimit == nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "credit limit is required for credit cards")
			return
		}
		if req.BillingDay == nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "billing day is required for credit cards")
			return
		}
	}
	if req.BillingDay != nil {
		if err := util.ValidateBillingDay(*req.BillingDay); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	var curCount int64
	if err := h.DB.Model(&models.Currency{}).Where("id = ?", req.CurrencyID).Count(&curCount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check currency")
		return
	}
	if curCount == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown currency")
		return
	}

	account := models.Account{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Type:        req.Type,
		CurrencyID:  req.CurrencyID,
		CreditLimit: req.CreditLimit,
		BillingDay:  req.BillingDay,
		IsActive:    true,
	}

	if err := h.DB.Create(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save account")
		return
	}

	util.Success(c, util.Response{"account": account})
}

// UpdateAccount patches an account's mutable fields. Type is locked after
// creation, and credit-card accounts can never lose limit or billing day.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var account models.Account
	if err := h.DB.First(&account, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.CurrencyID != nil {
		account.CurrencyID = *req.CurrencyID
	}
	if req.CreditLimit != nil {
		account.CreditLimit = req.CreditLimit
	}
	if req.BillingDay != nil {
		if err := util.ValidateBillingDay(*req.BillingDay); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		account.BillingDay = req.BillingDay
	}

	if account.Type == models.AccountTypeCreditCard {
		if account.CreditLimit == nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "credit limit is required for credit cards")
			return
		}
		if account.BillingDay == nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "billing day is required for credit cards")
			return
		}
	}

	if err := h.DB.Save(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save account")
		return
	}

	util.Success(c, util.Response{"account": account})
}

// ArchiveAccount soft-deletes an account.
func (h *AccountHandler) ArchiveAccount(c *gin.Context) {
	res := h.DB.Model(&models.Account{}).
		Where("id = ?", c.Param("id")).
		Update("is_active", false)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to archive account")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		return
	}

	util.Success(c, util.Response{"message": "account archived"})
}

// DeleteAccount permanently removes an account. Blocked while transactions
// reference it; archiving is the supported path in that case.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id := c.Param("id")

	var account models.Account
	if err := h.DB.First(&account, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		return
	}

	var txnCount int64
	if err := h.DB.Model(&models.Transaction{}).Where("account_id = ?", id).Count(&txnCount).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check transactions")
		return
	}
	if txnCount > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "cannot delete an account with transactions, archive it instead")
		return
	}

	if err := h.DB.Delete(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete account")
		return
	}

	util.Success(c, util.Response{"message": "account deleted"})
}

// ListCurrencies returns all available currencies ordered by code.
func (h *AccountHandler) ListCurrencies(c *gin.Context) {
	var currencies []models.Currency
	if err := h.DB.Order("code").Find(&currencies).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list currencies")
		return
	}

	util.Success(c, util.Response{"currencies": currencies})
}
