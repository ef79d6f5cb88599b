package models

import "time"

// Transaction is a single ledger entry.
// Amount is a positive integer in minor currency units; the sign lives in
// Type. Date is a plain YYYY-MM-DD calendar date, stored as text so range
// filters and month grouping compare lexicographically.
type Transaction struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID   string    `gorm:"size:36;index;not null" json:"accountId"`
	CategoryID  string    `gorm:"size:36;index;not null" json:"categoryId"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Type        string    `gorm:"column:type;size:16;index;not null" json:"type"` // income / expense
	Description string    `gorm:"size:255;not null" json:"description"`
	Date        string    `gorm:"size:10;index;not null" json:"date"`
	Notes       *string   `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}
