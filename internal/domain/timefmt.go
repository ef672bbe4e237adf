package domain

import (
	"fmt"
	"time"
)

// TimeLayout is the storage format for every timestamp: UTC with fixed
// millisecond width, so string order matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NormalizeTime parses an RFC 3339 timestamp and re-renders it in TimeLayout.
// Timestamps finer than a millisecond are rejected rather than truncated.
func NormalizeTime(s string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	if t.Nanosecond()%int(time.Millisecond) != 0 {
		return "", fmt.Errorf("invalid timestamp %q: precision finer than a millisecond", s)
	}
	return FormatTime(t), nil
}

func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
