package ledger

import (
	"testing"

	"github.com/Jacket-69/Necronomics/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCurrencies(t *testing.T, db *gorm.DB) {
	t.Helper()

	currencies := []models.Currency{
		{ID: "cur_clp", Code: "CLP", Name: "Peso Chileno", Symbol: "$"},
		{ID: "cur_usd", Code: "USD", Name: "US Dollar", Symbol: "US$", DecimalPlaces: 2},
	}
	require.NoError(t, db.Create(&currencies).Error)
}

func TestLatestRatesPicksNewestDate(t *testing.T) {
	db := newTestDB(t)
	seedCurrencies(t, db)

	rates := []models.ExchangeRate{
		{FromCurrencyID: "cur_usd", ToCurrencyID: "cur_clp", Date: "2024-01-01", Rate: decimal.NewFromInt(900)},
		{FromCurrencyID: "cur_usd", ToCurrencyID: "cur_clp", Date: "2024-03-01", Rate: decimal.NewFromInt(950)},
	}
	require.NoError(t, db.Create(&rates).Error)

	got, err := LatestRates(db, "cur_clp")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got["USD"].Equal(decimal.NewFromInt(950)))
}

func TestLatestRatesEmptyTable(t *testing.T) {
	db := newTestDB(t)
	seedCurrencies(t, db)

	got, err := LatestRates(db, "cur_clp")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestConvertToBaseSameCurrency(t *testing.T) {
	got, ok := ConvertToBase(12345, "CLP", "CLP", nil)
	require.True(t, ok)
	require.Equal(t, int64(12345), got)
}

func TestConvertToBaseMissingRate(t *testing.T) {
	rates := map[string]decimal.Decimal{"USD": decimal.NewFromInt(950)}

	_, ok := ConvertToBase(100, "EUR", "CLP", rates)
	require.False(t, ok, "a missing rate must exclude the amount, not zero it")
}

func TestConvertToBaseRounds(t *testing.T) {
	rates := map[string]decimal.Decimal{"USD": decimal.NewFromFloat(0.5)}

	got, ok := ConvertToBase(12345, "USD", "CLP", rates)
	require.True(t, ok)
	require.Equal(t, int64(6173), got) // 6172.5 rounds half away from zero
}
