// Package ledger holds the core bookkeeping logic: installment schedule
// generation, account balance recalculation, and exchange-rate lookups.
package ledger

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// InstallmentDueDates computes the ordered due dates for a debt's schedule.
//
// The anchor day-of-month is billingDay when present, otherwise the
// day-of-month of startDate. Installment i (1..total) falls in the month
// startMonth+i, with the anchor day clamped to the last valid day of that
// month (a day-31 anchor yields Feb 28/29, Apr 30, and so on).
//
// Pure and deterministic: same inputs always produce the same dates.
func InstallmentDueDates(startDate string, billingDay *int, total int) ([]string, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	day := start.Day()
	if billingDay != nil {
		day = *billingDay
	}

	dates := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		monthsOffset := int(start.Month()) - 1 + i
		targetYear := start.Year() + monthsOffset/12
		targetMonth := time.Month(monthsOffset%12 + 1)

		clamped := day
		if last := lastDayOfMonth(targetYear, targetMonth); clamped > last {
			clamped = last
		}
		if clamped < 1 {
			return nil, fmt.Errorf("cannot compute due date for installment %d", i)
		}

		due := time.Date(targetYear, targetMonth, clamped, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes out-of-range components; a shifted month
		// means the triple was not constructible.
		if due.Year() != targetYear || due.Month() != targetMonth || due.Day() != clamped {
			return nil, fmt.Errorf("cannot compute due date for installment %d", i)
		}

		dates = append(dates, due.Format(dateLayout))
	}

	return dates, nil
}

// lastDayOfMonth returns the number of days in the given month: the first
// day of the next month minus one day.
func lastDayOfMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
