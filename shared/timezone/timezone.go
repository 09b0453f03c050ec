package timezone

import (
	"fmt"
	"shear/config"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	appLocation *time.Location
)

func init() {
	cfg := config.Get()

	if cfg.App.Timezone == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		cfg.App.Timezone = "UTC"
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", cfg.App.Timezone).
			Msg("Failed to load timezone, falling back to UTC. Please use standard timezone names like 'Europe/Berlin', 'UTC', 'America/New_York'")
		appLocation = time.UTC
		return
	}

	appLocation = loc
	log.Info().
		Str("timezone", cfg.App.Timezone).
		Str("location", loc.String()).
		Msg("Salon timezone initialized")
}

// SetLocation overrides the configured salon location at runtime, e.g. when
// the admin settings change the salon timezone.
func SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	appLocation = loc
}

// Now returns the current time in the salon timezone
func Now() time.Time {
	if appLocation == nil {
		log.Warn().Msg("Timezone not initialized, using UTC")
		return time.Now().UTC()
	}
	return time.Now().In(appLocation)
}

// ToAppTime converts a time to the salon timezone
func ToAppTime(t time.Time) time.Time {
	if appLocation == nil {
		log.Warn().Msg("Timezone not initialized, using UTC")
		return t.UTC()
	}
	return t.In(appLocation)
}

// GetLocation returns the current salon timezone location
func GetLocation() *time.Location {
	if appLocation == nil {
		log.Warn().Msg("Timezone not initialized, returning UTC")
		return time.UTC
	}
	return appLocation
}

// Parse parses a time string in the salon timezone
func Parse(layout, value string) (time.Time, error) {
	if appLocation == nil {
		log.Warn().Msg("Timezone not initialized, parsing in UTC")
		return time.Parse(layout, value)
	}
	return time.ParseInLocation(layout, value, appLocation)
}

// Format formats a time in the salon timezone
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// ToInstant converts a salon wall-clock (date, clock) pair to an absolute
// instant. date is "2006-01-02", clock is "15:04". Conversion goes through
// time.Date in the salon location, so it is correct across DST transitions.
func ToInstant(date, clock string) (time.Time, error) {
	d, err := Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}

	return InstantAt(d, c.Hour()*60+c.Minute()), nil
}

// InstantAt returns the instant at the given minute of day on date's calendar
// day, in the salon timezone. The minute offset is normalized by time.Date,
// which keeps wall-clock semantics on days where a DST shift occurs.
func InstantAt(date time.Time, minuteOfDay int) time.Time {
	d := ToAppTime(date)

	return time.Date(d.Year(), d.Month(), d.Day(), 0, minuteOfDay, 0, 0, GetLocation())
}

// WallClock converts an instant back to the salon wall-clock (date, clock) pair.
func WallClock(t time.Time) (date, clock string) {
	local := ToAppTime(t)

	return local.Format("2006-01-02"), local.Format("15:04")
}

// WeekdayOf returns the salon-local weekday for the given instant.
// Sunday is 0, matching time.Weekday.
func WeekdayOf(t time.Time) time.Weekday {
	return ToAppTime(t).Weekday()
}

// MinuteOfDay returns the salon-local minute offset since midnight.
func MinuteOfDay(t time.Time) int {
	local := ToAppTime(t)

	return local.Hour()*60 + local.Minute()
}

// ParseClock converts a "15:04" clock string to minutes since midnight.
func ParseClock(clock string) (int, error) {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}

	return c.Hour()*60 + c.Minute(), nil
}

// ClockOf renders minutes since midnight as a "15:04" clock string.
func ClockOf(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}

// WindowContains reports whether the [start, end) minute interval lies fully
// inside the [winStart, winEnd) working window. All values are minutes since
// midnight in the salon timezone.
func WindowContains(winStart, winEnd, start, end int) bool {
	return start >= winStart && end <= winEnd && start < end
}
