// Package models defines data structures and domain types.
package models

import (
	"math"
	"time"
)

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all available historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Since returns the start of the range relative to now, or the zero time for
// an unlimited range.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -days)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// Action identifies what changed the gradebook.
type Action string

const (
	// ActionAdd records a new entry.
	ActionAdd Action = "add"
	// ActionDelete records a removed entry.
	ActionDelete Action = "delete"
	// ActionReload records the book being replaced from the roster file.
	ActionReload Action = "reload"
)

// GradeEvent is one row of the grade history log.
type GradeEvent struct {
	Timestamp  time.Time
	SessionID  string
	Action     Action
	Subject    string
	Assignment string
	ID         int64
	EntryID    int
	Score      int
	EntryCount int
	// OverallAverage is the rounded overall average after the change, NaN
	// when the book was left empty.
	OverallAverage float64
}

// HasAverage reports whether the event carries an overall average.
func (e GradeEvent) HasAverage() bool {
	return !math.IsNaN(e.OverallAverage)
}

// TrendPoint is one sample of the overall average over time.
type TrendPoint struct {
	Timestamp time.Time
	Average   float64
}

// SessionSummary aggregates the events of one application session.
type SessionSummary struct {
	StartedAt time.Time
	EndedAt   time.Time
	SessionID string
	Adds      int
	Deletes   int
	// LastAverage is NaN when the session ended with an empty book.
	LastAverage float64
}

// Duration returns how long the session was active.
func (s SessionSummary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// SubjectActivity counts history events for one subject within a range.
type SubjectActivity struct {
	Subject  string
	Adds     int
	Deletes  int
	AvgScore float64
}
