package quota

import (
	"testing"
	"time"
)

func TestDayOf_UsesLocation(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	instant := time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC)

	if got := DayOf(instant); got != "2026-10-14" {
		t.Errorf("DayOf(utc) = %q", got)
	}
	if got := DayOf(instant.In(moscow)); got != "2026-10-15" {
		t.Errorf("DayOf(msk) = %q", got)
	}
}

func TestParseDay(t *testing.T) {
	if _, err := ParseDay("2026-10-14"); err != nil {
		t.Errorf("valid day: %v", err)
	}
	for _, bad := range []string{"", "2026-13-01", "14.10.2026", "2026-10-14T00:00:00Z"} {
		if _, err := ParseDay(bad); err == nil {
			t.Errorf("ParseDay(%q) expected error", bad)
		}
	}
}

func TestDay_Start(t *testing.T) {
	start, err := Day("2026-10-14").Start(time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start() = %v", start)
	}
}

func TestStatus(t *testing.T) {
	reset := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	s := NewStatus("2026-10-14", 3, 1, reset)
	if s.Remaining() != 2 || s.IsExhausted() {
		t.Errorf("1 of 3: remaining=%d exhausted=%v", s.Remaining(), s.IsExhausted())
	}
	if !s.ResetsAt().Equal(reset) || s.Day() != "2026-10-14" || s.Limit() != 3 || s.Used() != 1 {
		t.Errorf("unexpected accessors: %+v", s)
	}

	over := NewStatus("2026-10-14", 3, 4, reset)
	if over.Remaining() != 0 || !over.IsExhausted() {
		t.Errorf("4 of 3: remaining=%d exhausted=%v", over.Remaining(), over.IsExhausted())
	}
}
