package db

import "time"

// SQL query fragments used across multiple functions
const (
	// sqlTimeFilterClause filters grade events by a lower timestamp bound
	sqlTimeFilterClause = "AND timestamp >= ?"
)

// timeLayout is how timestamps are stored. Always UTC.
const timeLayout = "2006-01-02 15:04:05"

var timeFormats = []string{
	timeLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 +0000 UTC",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
