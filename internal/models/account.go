package models

import "time"

// Account types are a closed set; anything else is rejected at the boundary.
const (
	AccountTypeCash       = "cash"
	AccountTypeBank       = "bank"
	AccountTypeCreditCard = "credit_card"
)

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t string) bool {
	return t == AccountTypeCash || t == AccountTypeBank || t == AccountTypeCreditCard
}

// Account represents a money account (cash, bank or credit card).
// Balance is a derived cache in minor currency units: it always equals the
// signed sum of the account's transactions and is only ever written inside
// the same database transaction as the ledger mutation that changed it.
type Account struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Type        string    `gorm:"column:type;size:16;index;not null" json:"type"`
	CurrencyID  string    `gorm:"size:36;index;not null" json:"currencyId"`
	Balance     int64     `gorm:"not null;default:0" json:"balance"`
	CreditLimit *int64    `json:"creditLimit"`
	BillingDay  *int      `json:"billingDay"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`

	Currency Currency `json:"-"`
}
