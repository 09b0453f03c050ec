package timezone_test

import (
	"shear/shared/timezone"
	"testing"
	"time"
)

func TestTimezoneInit(t *testing.T) {
	now := timezone.Now()
	if now.IsZero() {
		t.Error("Now() returned zero time")
	}

	loc := timezone.GetLocation()
	if loc == nil {
		t.Error("GetLocation() returned nil")
	}
}

func TestToInstantRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}
	timezone.SetLocation(loc)
	defer timezone.SetLocation(time.UTC)

	instant, err := timezone.ToInstant("2025-06-15", "09:30")
	if err != nil {
		t.Fatalf("ToInstant() failed: %v", err)
	}

	date, clock := timezone.WallClock(instant)
	if date != "2025-06-15" || clock != "09:30" {
		t.Errorf("WallClock() = (%s, %s), want (2025-06-15, 09:30)", date, clock)
	}

	if got := timezone.MinuteOfDay(instant); got != 9*60+30 {
		t.Errorf("MinuteOfDay() = %d, want %d", got, 9*60+30)
	}
}

func TestToInstantAcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}
	timezone.SetLocation(loc)
	defer timezone.SetLocation(time.UTC)

	// Berlin springs forward 2025-03-30 02:00 -> 03:00. A 10:00 wall-clock
	// booking on that day is 08:00 UTC, not 09:00.
	instant, err := timezone.ToInstant("2025-03-30", "10:00")
	if err != nil {
		t.Fatalf("ToInstant() failed: %v", err)
	}

	if got := instant.UTC().Hour(); got != 8 {
		t.Errorf("instant UTC hour = %d, want 8", got)
	}

	_, clock := timezone.WallClock(instant)
	if clock != "10:00" {
		t.Errorf("WallClock() clock = %s, want 10:00", clock)
	}
}

func TestToInstantRejectsGarbage(t *testing.T) {
	if _, err := timezone.ToInstant("not-a-date", "10:00"); err == nil {
		t.Error("expected error for unparseable date")
	}

	if _, err := timezone.ToInstant("2025-06-15", "25:99"); err == nil {
		t.Error("expected error for unparseable time")
	}
}

func TestWeekdayOf(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}
	timezone.SetLocation(loc)
	defer timezone.SetLocation(time.UTC)

	// 2025-06-15 is a Sunday; just before midnight UTC on the 14th it is
	// already Sunday in Berlin.
	instant := time.Date(2025, 6, 14, 23, 30, 0, 0, time.UTC)
	if got := timezone.WeekdayOf(instant); got != time.Sunday {
		t.Errorf("WeekdayOf() = %v, want Sunday", got)
	}
}

func TestWindowContains(t *testing.T) {
	tests := []struct {
		name             string
		winStart, winEnd int
		start, end       int
		want             bool
	}{
		{"inside", 9 * 60, 18 * 60, 10 * 60, 11 * 60, true},
		{"exact fit", 9 * 60, 18 * 60, 9 * 60, 18 * 60, true},
		{"starts before open", 9 * 60, 18 * 60, 8*60 + 45, 10 * 60, false},
		{"runs past close", 9 * 60, 18 * 60, 17*60 + 30, 18*60 + 15, false},
		{"empty interval", 9 * 60, 18 * 60, 10 * 60, 10 * 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timezone.WindowContains(tt.winStart, tt.winEnd, tt.start, tt.end); got != tt.want {
				t.Errorf("WindowContains() = %v, want %v", got, tt.want)
			}
		})
	}
}
