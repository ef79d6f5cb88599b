package ledger

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LatestRates returns the most recent exchange rate per source currency
// into the base currency, keyed by the source currency code. Only the row
// with the maximum date per (from, to) pair is considered.
func LatestRates(db *gorm.DB, baseCurrencyID string) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Code string
		Rate decimal.Decimal
	}
	err := db.Raw(
		`SELECT c.code AS code, er.rate AS rate
		 FROM exchange_rates er
		 JOIN currencies c ON er.from_currency_id = c.id
		 WHERE er.to_currency_id = ?
		   AND er.date = (SELECT MAX(date) FROM exchange_rates er2
		                   WHERE er2.from_currency_id = er.from_currency_id
		                     AND er2.to_currency_id = er.to_currency_id)`,
		baseCurrencyID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	rates := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		rates[r.Code] = r.Rate
	}
	return rates, nil
}

// ConvertToBase converts a minor-unit amount from currencyCode into the base
// currency using the pre-fetched rates. The second return value is false
// when no rate exists; per policy the caller then excludes the amount from
// consolidated totals rather than treating it as zero.
func ConvertToBase(amount int64, currencyCode, baseCode string, rates map[string]decimal.Decimal) (int64, bool) {
	if currencyCode == baseCode {
		return amount, true
	}
	rate, ok := rates[currencyCode]
	if !ok {
		return 0, false
	}
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart(), true
}
