package storyline

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimestamp is returned when a tracker timestamp cannot be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// DayBoundary is the clock time used for the open ends of a day.
const DayBoundary = "00:00"

var timestampLayouts = []string{
	"20060102T150405Z0700",
	"20060102T150405",
}

// ParseTimestamp parses the tracker's compact timestamp, e.g. 20131107T090315+0200.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// FormatClock returns the HH:MM of raw in the offset the timestamp was recorded in.
func FormatClock(raw string) (string, error) {
	t, err := ParseTimestamp(raw)
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}

func clockRange(start, end string) (string, string, error) {
	s, err := FormatClock(start)
	if err != nil {
		return "", "", fmt.Errorf("start time: %w", err)
	}
	e, err := FormatClock(end)
	if err != nil {
		return "", "", fmt.Errorf("end time: %w", err)
	}
	return s, e, nil
}
