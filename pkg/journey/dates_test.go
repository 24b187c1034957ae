package journey

import (
	"testing"
	"time"
)

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestDiffDaysLocalFloorsPartialDays(t *testing.T) {
	start := localDate(2025, time.March, 1)
	end := time.Date(2025, time.March, 3, 23, 59, 0, 0, time.Local)
	if got := DiffDaysLocal(start, end); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}

	sameDay := time.Date(2025, time.March, 1, 18, 30, 0, 0, time.Local)
	if got := DiffDaysLocal(start, sameDay); got != 0 {
		t.Fatalf("expected 0 days within same day, got %d", got)
	}
}

func TestDiffDaysLocalClampsNegative(t *testing.T) {
	start := localDate(2025, time.March, 10)
	end := localDate(2025, time.March, 5)
	if got := DiffDaysLocal(start, end); got != 0 {
		t.Fatalf("expected negative span clamped to 0, got %d", got)
	}
}

func TestDayOffsetClampsToSpan(t *testing.T) {
	now := localDate(2025, time.June, 1)

	old := localDate(2024, time.June, 1)
	if got := DayOffset(old, now, DefaultDaySpan); got != DefaultDaySpan {
		t.Fatalf("expected clamp to %d, got %d", DefaultDaySpan, got)
	}
	if got := DayOffset(old, now, SaidNoDaySpan); got != SaidNoDaySpan {
		t.Fatalf("expected clamp to %d, got %d", SaidNoDaySpan, got)
	}

	future := localDate(2025, time.June, 10)
	if got := DayOffset(future, now, DefaultDaySpan); got != 0 {
		t.Fatalf("expected future start clamped to 0, got %d", got)
	}
}

func TestPercentBetween(t *testing.T) {
	book := localDate(2025, time.April, 1)
	clean := localDate(2025, time.April, 11)

	if got := PercentBetween(book, clean, localDate(2025, time.April, 6)); got != 50 {
		t.Fatalf("expected 50%%, got %d", got)
	}
	if got := PercentBetween(book, clean, localDate(2025, time.March, 1)); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := PercentBetween(book, clean, localDate(2025, time.May, 1)); got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
}

func TestPercentBetweenDegenerateSpan(t *testing.T) {
	book := localDate(2025, time.April, 10)
	clean := localDate(2025, time.April, 10)

	if got := PercentBetween(book, clean, localDate(2025, time.April, 10)); got != 100 {
		t.Fatalf("expected 100%% once now reaches clean, got %d", got)
	}
	if got := PercentBetween(book, clean, localDate(2025, time.April, 9)); got != 0 {
		t.Fatalf("expected 0%% before clean, got %d", got)
	}

	inverted := localDate(2025, time.April, 5)
	if got := PercentBetween(book, inverted, localDate(2025, time.April, 7)); got != 100 {
		t.Fatalf("expected inverted span to report 100%%, got %d", got)
	}
}

func TestMonthIndex(t *testing.T) {
	cases := map[int]int{0: 0, 29: 0, 30: 1, 59: 1, 60: 2, 180: 6}
	for day, want := range cases {
		if got := MonthIndex(day); got != want {
			t.Fatalf("day %d: expected month %d, got %d", day, want, got)
		}
	}
}

func TestParseDateInput(t *testing.T) {
	parsed, err := ParseDateInput("2025-07-04")
	if err != nil {
		t.Fatalf("failed to parse date: %v", err)
	}
	if !parsed.Equal(localDate(2025, time.July, 4)) {
		t.Fatalf("expected local midnight, got %v", parsed)
	}
	if got := FormatDateInput(parsed); got != "2025-07-04" {
		t.Fatalf("round trip mismatch: %s", got)
	}

	if _, err := ParseDateInput("04/07/2025"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
