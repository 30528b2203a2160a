package utils

import "time"

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ParseEventDate parses a calendar date in YYYY-MM-DD form, the format event
// dates are persisted in.
func ParseEventDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
