// Package timeslot converts human time strings to minute-of-day slots and
// back, and provides the civil-date helpers used by the result views.
package timeslot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"resultboard/internal/server/core"
)

// MinutesPerDay bounds a slot to [0, MinutesPerDay)
const MinutesPerDay = 24 * 60

var (
	strictPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\s*([AaPp][Mm]))?$`)
	compactPattern = regexp.MustCompile(`^(\d{1,2})(\d{2})\s*([AaPp][Mm])?$`)
)

// ToMinutes parses "H:MM", "HH:MM" or either with an AM/PM suffix.
// 12-hour input must use hours 1..12, 24-hour input hours 0..23.
func ToMinutes(text string) (int, error) {
	s := strings.TrimSpace(text)
	m := strictPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidTimeFormat, text)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return 0, fmt.Errorf("%w: %q: minute out of range", core.ErrInvalidTimeFormat, text)
	}

	if m[3] == "" {
		if hour > 23 {
			return 0, fmt.Errorf("%w: %q: hour out of range", core.ErrInvalidTimeFormat, text)
		}
		return hour*60 + minute, nil
	}

	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("%w: %q: hour out of range", core.ErrInvalidTimeFormat, text)
	}
	hour %= 12
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return hour*60 + minute, nil
}

// ToMinutesLenient is the import-path parser. It also accepts compact
// "HMM"/"HHMM" forms and ignores dots, so "3.40 p.m." parses.
func ToMinutesLenient(text string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(text, ".", "")))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", core.ErrInvalidTimeFormat)
	}

	m := strictPattern.FindStringSubmatch(s)
	if m == nil {
		m = compactPattern.FindStringSubmatch(strings.ReplaceAll(s, " ", ""))
	}
	if m == nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidTimeFormat, text)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	switch m[3] {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q: out of range", core.ErrInvalidTimeFormat, text)
	}
	return hour*60 + minute, nil
}

// ToDisplay renders a slot as "H:MM AM" with no leading zero on the hour
func ToDisplay(min int) string {
	h := min / 60
	m := min % 60
	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, meridiem)
}

// ToZeroPadded24h renders a slot as "HH:MM"
func ToZeroPadded24h(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ValidSlot reports whether min is a minute of the day
func ValidSlot(min int) bool {
	return min >= 0 && min < MinutesPerDay
}
