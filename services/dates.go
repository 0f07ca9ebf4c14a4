package services

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TruncateToDay drops the time-of-day component. All interval math in
// this package is day granular and inclusive on both ends.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "2006-01-02" or a full RFC3339 timestamp (the
// frontend sends either, depending on the widget).
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return TruncateToDay(t), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return TruncateToDay(t), nil
}

// RentalDays counts calendar days in the inclusive range.
func RentalDays(start, end time.Time) int {
	days := int(TruncateToDay(end).Sub(TruncateToDay(start)).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}
