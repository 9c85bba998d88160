package timeslot

import (
	"errors"
	"testing"
	"time"

	"resultboard/internal/server/core"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12:00 AM", 0},
		{"12:00 PM", 720},
		{"11:59 PM", 1439},
		{"3:40 PM", 940},
		{"03:40 pm", 940},
		{"3:40PM", 940},
		{"  9:05 am ", 545},
		{"00:00", 0},
		{"23:59", 1439},
		{"7:30", 450},
	}
	for _, tt := range tests {
		got, err := ToMinutes(tt.in)
		if err != nil {
			t.Fatalf("ToMinutes(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestToMinutesRejects(t *testing.T) {
	for _, in := range []string{"13:00 PM", "0:30 AM", "24:00", "12:60", "abc", "", "3:4 PM", "1540"} {
		if _, err := ToMinutes(in); !errors.Is(err, core.ErrInvalidTimeFormat) {
			t.Errorf("ToMinutes(%q) err = %v, want ErrInvalidTimeFormat", in, err)
		}
	}
}

func TestDisplayRoundTrip(t *testing.T) {
	for m := 0; m < MinutesPerDay; m++ {
		got, err := ToMinutes(ToDisplay(m))
		if err != nil {
			t.Fatalf("round trip %d: %v", m, err)
		}
		if got != m {
			t.Fatalf("round trip %d: got %d", m, got)
		}
	}
}

func TestToDisplay(t *testing.T) {
	cases := map[int]string{0: "12:00 AM", 545: "9:05 AM", 720: "12:00 PM", 940: "3:40 PM", 1439: "11:59 PM"}
	for in, want := range cases {
		if got := ToDisplay(in); got != want {
			t.Errorf("ToDisplay(%d) = %q, want %q", in, got, want)
		}
	}
	if got := ToZeroPadded24h(545); got != "09:05" {
		t.Errorf("ToZeroPadded24h(545) = %q", got)
	}
}

func TestToMinutesLenient(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3:40 PM", 940},
		{"3.40 p.m.", 940},
		{"340PM", 940},
		{"1540", 940},
		{"12:15 AM", 15},
		{"12:15 PM", 735},
		{"0915", 555},
	}
	for _, tt := range tests {
		got, err := ToMinutesLenient(tt.in)
		if err != nil {
			t.Fatalf("ToMinutesLenient(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ToMinutesLenient(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if _, err := ToMinutesLenient("2560"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestDaysInMonth(t *testing.T) {
	if got := DaysInMonth(2024, 2); got != 29 {
		t.Errorf("2024-02: got %d", got)
	}
	if got := DaysInMonth(2023, 2); got != 28 {
		t.Errorf("2023-02: got %d", got)
	}
	dates := MonthDates(2024, 12)
	if len(dates) != 31 || dates[0] != "2024-12-01" || dates[30] != "2024-12-31" {
		t.Errorf("unexpected month dates: %v", dates)
	}
}

func TestParseDateRejectsImpossibleDates(t *testing.T) {
	for _, in := range []string{"2023-02-29", "2024-13-01", "2024-1-01", "20240101"} {
		if _, err := ParseDate(in); !core.IsValidation(err) {
			t.Errorf("ParseDate(%q) err = %v, want validation error", in, err)
		}
	}
	if _, err := ParseDate("2024-02-29"); err != nil {
		t.Errorf("leap day rejected: %v", err)
	}
}

func TestPreviousDayCrossesYear(t *testing.T) {
	got, err := PreviousDay("2025-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-12-31" {
		t.Errorf("got %s", got)
	}
}

func TestTodayUsesOffset(t *testing.T) {
	now := time.Date(2025, 8, 1, 19, 0, 0, 0, time.UTC)
	if got := Today(now, DefaultHomeOffsetMinutes); got != "2025-08-02" {
		t.Errorf("got %s", got)
	}
	if got := Today(now, 0); got != "2025-08-01" {
		t.Errorf("got %s", got)
	}
}
