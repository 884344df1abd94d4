// Package timeutil normalizes schedule timestamps. Storage is always UTC;
// conversion into a display timezone happens only at view boundaries.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// StorageLayout is the canonical persisted timestamp format.
const StorageLayout = time.RFC3339Nano

// acceptedLayouts are the wall-clock formats users may type on the CLI or in
// inbox drafts. Layouts without a zone are interpreted in the given location.
var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseSchedule interprets a user-supplied timestamp. Zone-less layouts are
// read in loc; the result is normalized to UTC.
func ParseSchedule(value string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("parse schedule: empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range acceptedLayouts {
		parsed, err := time.ParseInLocation(layout, trimmed, loc)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse schedule: unrecognized timestamp %q", trimmed)
}

// FormatStorage renders a timestamp in the canonical persisted form.
func FormatStorage(t time.Time) string {
	return t.UTC().Format(StorageLayout)
}

// ParseStorage reads a persisted timestamp back.
func ParseStorage(value string) (time.Time, error) {
	parsed, err := time.Parse(StorageLayout, value)
	if err != nil {
		// Older rows may have been stored without sub-second precision.
		parsed, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", value, err)
		}
	}
	return parsed.UTC(), nil
}

// InZone converts a stored UTC timestamp into a display location.
func InZone(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}

// DayKey returns the YYYY-MM-DD bucket for a timestamp in a display location.
// Calendar and analytics views group by this key.
func DayKey(t time.Time, loc *time.Location) string {
	return InZone(t, loc).Format("2006-01-02")
}

// MonthBounds returns the [start, end) UTC instants covering a calendar month
// as observed in loc.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}
