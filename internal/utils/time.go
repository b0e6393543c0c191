package utils

import "time"

// DayKey formats t in UTC as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
