package amortization

import "time"

// AddMonths advances t by the given number of calendar months. When the
// day of month does not exist in the target month (e.g. Jan 31 + 1 month)
// the result is clamped to the last day of that month.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	hour, min, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		hour, min, sec, t.Nanosecond(), t.Location())
}

// IsDateOverdue checks if a due date has passed relative to now.
func IsDateOverdue(dueDate, now time.Time) bool {
	return dueDate.Before(now)
}
