package ledger

import (
	"reflect"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestInstallmentDueDatesMonthlySchedule(t *testing.T) {
	got, err := InstallmentDueDates("2024-01-15", nil, 12)
	if err != nil {
		t.Fatalf("InstallmentDueDates: %v", err)
	}

	want := []string{
		"2024-02-15", "2024-03-15", "2024-04-15", "2024-05-15",
		"2024-06-15", "2024-07-15", "2024-08-15", "2024-09-15",
		"2024-10-15", "2024-11-15", "2024-12-15", "2025-01-15",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("schedule mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestInstallmentDueDatesClampsToMonthEnd(t *testing.T) {
	got, err := InstallmentDueDates("2024-01-31", nil, 3)
	if err != nil {
		t.Fatalf("InstallmentDueDates: %v", err)
	}

	// 2024 is a leap year
	want := []string{"2024-02-29", "2024-03-31", "2024-04-30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("schedule mismatch:\n got %v\nwant %v", got, want)
	}

	got, err = InstallmentDueDates("2025-01-31", nil, 1)
	if err != nil {
		t.Fatalf("InstallmentDueDates: %v", err)
	}
	if got[0] != "2025-02-28" {
		t.Errorf("non-leap February: got %s, want 2025-02-28", got[0])
	}
}

func TestInstallmentDueDatesBillingDayOverride(t *testing.T) {
	got, err := InstallmentDueDates("2024-01-15", intPtr(5), 2)
	if err != nil {
		t.Fatalf("InstallmentDueDates: %v", err)
	}

	want := []string{"2024-02-05", "2024-03-05"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("schedule mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestInstallmentDueDatesBillingDayClamped(t *testing.T) {
	got, err := InstallmentDueDates("2024-01-15", intPtr(31), 3)
	if err != nil {
		t.Fatalf("InstallmentDueDates: %v", err)
	}

	want := []string{"2024-02-29", "2024-03-31", "2024-04-30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("schedule mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestInstallmentDueDatesYearRollover(t *testing.T) {
	got, err := InstallmentDueDates("2024-11-10", nil, 4)
	if err != nil {
		t.Fatalf("InstallmentDueDates: %v", err)
	}

	want := []string{"2024-12-10", "2025-01-10", "2025-02-10", "2025-03-10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("schedule mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestInstallmentDueDatesDeterministic(t *testing.T) {
	first, err := InstallmentDueDates("2024-03-07", intPtr(28), 24)
	if err != nil {
		t.Fatalf("InstallmentDueDates: %v", err)
	}
	second, err := InstallmentDueDates("2024-03-07", intPtr(28), 24)
	if err != nil {
		t.Fatalf("InstallmentDueDates: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same inputs produced different schedules:\n%v\n%v", first, second)
	}
}

func TestInstallmentDueDatesInvalidStart(t *testing.T) {
	for _, bad := range []string{"", "15-01-2024", "2024/01/15", "2024-13-01"} {
		if _, err := InstallmentDueDates(bad, nil, 3); err == nil {
			t.Errorf("expected error for start date %q", bad)
		}
	}
}
