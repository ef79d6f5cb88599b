package util

import (
	"fmt"
	"time"
)

// ValidateAmount checks a minor-unit amount (must be positive).
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateDate checks a calendar date string (must be YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateBillingDay checks a billing day-of-month (1-31).
func ValidateBillingDay(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("billing day must be between 1 and 31, got %d", day)
	}
	return nil
}
