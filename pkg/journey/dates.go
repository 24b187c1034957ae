package journey

import "time"

const dateInputLayout = "2006-01-02"

// StartOfLocalDay truncates a timestamp to local midnight. All elapsed-day
// and percent math works on local-midnight values so same-day comparisons
// never produce negative durations.
func StartOfLocalDay(t time.Time) time.Time {
	lt := t.Local()
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.Local)
}

// localDayNumber maps a timestamp to a whole-day ordinal using its local
// calendar date. Diffing ordinals instead of durations keeps the math exact
// across DST shifts.
func localDayNumber(t time.Time) int64 {
	lt := t.Local()
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DiffDaysLocal returns the whole local days elapsed from start to end,
// clamped to >= 0.
func DiffDaysLocal(start, end time.Time) int {
	diff := localDayNumber(end) - localDayNumber(start)
	if diff < 0 {
		return 0
	}
	return int(diff)
}

// DayOffset is the timeline position of a start date relative to now,
// clamped to [0, maxDays]. A future start date clamps to 0.
func DayOffset(start, now time.Time, maxDays int) int {
	day := DiffDaysLocal(start, now)
	if day > maxDays {
		return maxDays
	}
	return day
}

// PercentBetween returns how far now sits between book and clean as a whole
// percentage clamped to [0, 100]. When clean <= book there is no span to
// divide by: the answer is 100 once now reaches clean, else 0.
func PercentBetween(book, clean, now time.Time) int {
	b := localDayNumber(book)
	c := localDayNumber(clean)
	n := localDayNumber(now)
	if c <= b {
		if n >= c {
			return 100
		}
		return 0
	}
	pct := int(100 * (n - b) / (c - b))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// MonthIndex converts a day offset into the month label used by the said-no
// timeline. Grouping stays keyed by day; this is display only.
func MonthIndex(day int) int {
	return day / 30
}

// ParseDateInput parses a yyyy-mm-dd form value at local midnight.
func ParseDateInput(value string) (time.Time, error) {
	return time.ParseInLocation(dateInputLayout, value, time.Local)
}

func FormatDateInput(t time.Time) string {
	return t.Local().Format(dateInputLayout)
}
