// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time plus the given duration
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// DayUTC formats a timestamp as its UTC calendar date (YYYY-MM-DD),
// the grouping key for per-day click series
func DayUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// TimeToUTC converts a time to UTC if it's not already
func TimeToUTC(t time.Time) time.Time {
	return t.UTC()
}
