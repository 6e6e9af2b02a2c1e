package utils

import "time"

// NowMillis returns the current UTC time in milliseconds since the epoch.
func NowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// DaysToMillis converts a possibly fractional day count to milliseconds.
func DaysToMillis(days float64) int64 {
	return int64(days * 24 * 3600 * 1000)
}

// UpperMinute returns the first instant of the minute following t. Exchange
// request weights reset on minute boundaries, so waiting until the next one
// is enough to clear a breached limit.
func UpperMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute).Add(time.Minute)
}
