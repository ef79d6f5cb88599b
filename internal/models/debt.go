package models

import "time"

// Installment statuses. The pending → paid edge is one-way.
const (
	InstallmentPending = "pending"
	InstallmentPaid    = "paid"
)

// Debt is an installment-based obligation tied to one account. The full
// installment schedule is generated at creation time and never changes
// afterwards; only description, interest rate, active flag and notes are
// mutable. PaidInstallments is a cache recomputed from the installments
// table on every payment, never trusted as independent truth.
type Debt struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID         string    `gorm:"size:36;index;not null" json:"accountId"`
	Description       string    `gorm:"size:255;not null" json:"description"`
	OriginalAmount    int64     `gorm:"not null" json:"originalAmount"`
	TotalInstallments int       `gorm:"not null" json:"totalInstallments"`
	PaidInstallments  int       `gorm:"not null;default:0" json:"paidInstallments"`
	MonthlyPayment    int64     `gorm:"not null" json:"monthlyPayment"`
	InterestRate      float64   `gorm:"not null;default:0" json:"interestRate"` // informational only
	StartDate         string    `gorm:"size:10;not null" json:"startDate"`
	IsActive          bool      `gorm:"not null;default:true" json:"isActive"`
	Notes             *string   `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `json:"createdAt"`

	Installments []Installment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Installment is one row of a debt's schedule. Due date, amount and number
// are immutable after creation; only status and the payment linkage change,
// exactly once. TransactionID weakly references the generated expense
// transaction and may dangle after the debt is deleted.
type Installment struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	DebtID            string    `gorm:"size:36;index;not null" json:"debtId"`
	InstallmentNumber int       `gorm:"not null" json:"installmentNumber"`
	DueDate           string    `gorm:"size:10;index;not null" json:"dueDate"`
	Amount            int64     `gorm:"not null" json:"amount"`
	Status            string    `gorm:"size:16;index;not null;default:pending" json:"status"`
	ActualPaymentDate *string   `gorm:"size:10" json:"actualPaymentDate"`
	TransactionID     *string   `gorm:"size:36" json:"transactionId"`
	CreatedAt         time.Time `json:"createdAt"`
}
