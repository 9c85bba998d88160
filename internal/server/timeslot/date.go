package timeslot

import (
	"fmt"
	"time"

	"resultboard/internal/server/core"
)

// DateLayout is the canonical civil date format
const DateLayout = "2006-01-02"

// DefaultHomeOffsetMinutes is UTC+05:30
const DefaultHomeOffsetMinutes = 330

// ParseDate parses a YYYY-MM-DD string that must name a real calendar date
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, core.NewValidationError("dateStr", "must be a real date in YYYY-MM-DD format")
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD in its own location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysInMonth returns the number of days in the month, leap-aware
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDates lists every civil date of the month in order
func MonthDates(year, month int) []string {
	n := DaysInMonth(year, month)
	dates := make([]string, 0, n)
	for d := 1; d <= n; d++ {
		dates = append(dates, fmt.Sprintf("%04d-%02d-%02d", year, month, d))
	}
	return dates
}

// PreviousDay subtracts one calendar day
func PreviousDay(dateStr string) (string, error) {
	t, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, -1)), nil
}

// Today returns the civil date of now in a fixed UTC offset
func Today(now time.Time, offsetMinutes int) string {
	loc := time.FixedZone("home", offsetMinutes*60)
	return FormatDate(now.In(loc))
}
