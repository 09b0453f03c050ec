// Package timezone anchors every wall-clock computation to the salon's single
// configured IANA timezone.
//
// The booking core never does arithmetic on bare clock strings: a (date, time)
// pair coming over the wire is converted once via ToInstant, all interval
// logic runs on absolute instants, and WallClock converts back at the edge.
// Composing instants with time.Date in the salon location keeps slot starts
// correct across daylight-saving transitions.
//
//  1. Converting a requested slot to an instant:
//     start, err := timezone.ToInstant("2025-03-30", "10:15")
//
//  2. Walking a working window:
//     t := timezone.InstantAt(day, window.StartMinutes)
//
//  3. Presenting an instant back to the UI:
//     date, clock := timezone.WallClock(appt.StartTime)
//
// The timezone is configured via the APP_TIMEZONE environment variable and is
// initialized when the package is imported. Use standard IANA timezone
// database names ("UTC", "Europe/Berlin", "America/New_York").
package timezone
