package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/j-veylop/gradebook-tui/internal/logger"
	"github.com/j-veylop/gradebook-tui/internal/models"
)

const gradeEventColumns = `id, session_id, timestamp, action, entry_id, subject, assignment,
	score, overall_average, entry_count`

// InsertGradeEvent records a gradebook change. A zero Timestamp is replaced
// with the current time and the generated ID is written back to event.
func (db *DB) InsertGradeEvent(event *models.GradeEvent) error {
	query := `
		INSERT INTO grade_events (
			session_id, timestamp, action, entry_id, subject, assignment,
			score, overall_average, entry_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		event.SessionID,
		formatTime(event.Timestamp),
		string(event.Action),
		event.EntryID,
		event.Subject,
		event.Assignment,
		event.Score,
		nullFloat(event.OverallAverage),
		event.EntryCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert grade event: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		event.ID = id
	}

	return nil
}

// GetRecentGradeEvents returns up to limit events, newest first.
func (db *DB) GetRecentGradeEvents(limit int) ([]models.GradeEvent, error) {
	query := `SELECT ` + gradeEventColumns + `
		FROM grade_events
		ORDER BY id DESC
		LIMIT ?`

	return db.queryGradeEvents(query, limit)
}

// GetGradeEventsSince returns up to limit events recorded at or after since,
// newest first. A zero since returns events from all time.
func (db *DB) GetGradeEventsSince(since time.Time, limit int) ([]models.GradeEvent, error) {
	query := `SELECT ` + gradeEventColumns + `
		FROM grade_events
		WHERE 1=1 ` + sqlTimeFilterClause + `
		ORDER BY id DESC
		LIMIT ?`

	return db.queryGradeEvents(query, formatTime(since), limit)
}

func (db *DB) queryGradeEvents(query string, args ...any) ([]models.GradeEvent, error) {
	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grade events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var events []models.GradeEvent
	for rows.Next() {
		var e models.GradeEvent
		var ts, action string
		var avg sql.NullFloat64

		err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&ts,
			&action,
			&e.EntryID,
			&e.Subject,
			&e.Assignment,
			&e.Score,
			&avg,
			&e.EntryCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grade event: %w", err)
		}

		e.Timestamp, _ = parseTimeString(ts)
		e.Action = models.Action(action)
		e.OverallAverage = floatOrNaN(avg)
		events = append(events, e)
	}

	return events, rows.Err()
}

// GetAverageTrend returns the last limit overall averages recorded by a
// session in chronological order. Events that left the book empty are skipped.
func (db *DB) GetAverageTrend(sessionID string, limit int) ([]models.TrendPoint, error) {
	query := `
		SELECT timestamp, overall_average FROM (
			SELECT id, timestamp, overall_average
			FROM grade_events
			WHERE session_id = ? AND overall_average IS NOT NULL
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC
	`

	rows, err := db.QueryContext(context.Background(), query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query average trend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []models.TrendPoint
	for rows.Next() {
		var p models.TrendPoint
		var ts string
		if err := rows.Scan(&ts, &p.Average); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		p.Timestamp, _ = parseTimeString(ts)
		points = append(points, p)
	}

	return points, rows.Err()
}

// GetSessionSummaries returns one summary per session, most recent first.
func (db *DB) GetSessionSummaries(limit int) ([]models.SessionSummary, error) {
	query := `
		SELECT
			g.session_id,
			MIN(g.timestamp),
			MAX(g.timestamp),
			SUM(CASE WHEN g.action = 'add' THEN 1 ELSE 0 END),
			SUM(CASE WHEN g.action = 'delete' THEN 1 ELSE 0 END),
			(SELECT last.overall_average FROM grade_events last
			 WHERE last.session_id = g.session_id
			 ORDER BY last.id DESC LIMIT 1)
		FROM grade_events g
		GROUP BY g.session_id
		ORDER BY MAX(g.id) DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		var started, ended string
		var last sql.NullFloat64

		if err := rows.Scan(&s.SessionID, &started, &ended, &s.Adds, &s.Deletes, &last); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}

		s.StartedAt, _ = parseTimeString(started)
		s.EndedAt, _ = parseTimeString(ended)
		s.LastAverage = floatOrNaN(last)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// GetSubjectActivity counts adds and deletes per subject recorded at or after
// since. AvgScore covers added scores only and is NaN for a subject that only
// saw deletes in the range.
func (db *DB) GetSubjectActivity(since time.Time) ([]models.SubjectActivity, error) {
	query := `
		SELECT
			subject,
			SUM(CASE WHEN action = 'add' THEN 1 ELSE 0 END),
			SUM(CASE WHEN action = 'delete' THEN 1 ELSE 0 END),
			AVG(CASE WHEN action = 'add' THEN score END)
		FROM grade_events
		WHERE action != 'reload' ` + sqlTimeFilterClause + `
		GROUP BY subject
		ORDER BY subject
	`

	rows, err := db.QueryContext(context.Background(), query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query subject activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activity []models.SubjectActivity
	for rows.Next() {
		var a models.SubjectActivity
		var avg sql.NullFloat64
		if err := rows.Scan(&a.Subject, &a.Adds, &a.Deletes, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan subject activity: %w", err)
		}
		a.AvgScore = floatOrNaN(avg)
		activity = append(activity, a)
	}

	return activity, rows.Err()
}

// DeleteEventsBefore removes history older than cutoff and returns the number
// of rows deleted.
func (db *DB) DeleteEventsBefore(cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(context.Background(),
		"DELETE FROM grade_events WHERE timestamp < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old grade events: %w", err)
	}
	return result.RowsAffected()
}

// nullFloat maps NaN to SQL NULL.
func nullFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func floatOrNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}
