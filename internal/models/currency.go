package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a reference row; the seed data ships CLP, USD and EUR.
type Currency struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Code          string    `gorm:"size:8;uniqueIndex;not null" json:"code"`
	Name          string    `gorm:"size:64;not null" json:"name"`
	Symbol        string    `gorm:"size:8;not null" json:"symbol"`
	DecimalPlaces int       `gorm:"not null;default:0" json:"decimalPlaces"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ExchangeRate stores one conversion rate for a (from, to, date) triple.
// Reporting always picks the most recent date per pair; a pair with no rows
// at all simply drops out of consolidated totals.
type ExchangeRate struct {
	FromCurrencyID string          `gorm:"primaryKey;size:36" json:"fromCurrencyId"`
	ToCurrencyID   string          `gorm:"primaryKey;size:36" json:"toCurrencyId"`
	Date           string          `gorm:"primaryKey;size:10" json:"date"`
	Rate           decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"rate"`
}
