package models

import "time"

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// ValidEntryType reports whether t is "income" or "expense".
func ValidEntryType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Category represents an income/expense category. Categories nest at most
// one level deep: a category with a parent can never itself be a parent,
// and a child's type always equals its parent's type.
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Type      string    `gorm:"column:type;size:16;index;not null" json:"type"` // income / expense
	Icon      *string   `gorm:"size:64" json:"icon"`
	ParentID  *string   `gorm:"size:36;index" json:"parentId"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
