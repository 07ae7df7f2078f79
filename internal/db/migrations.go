package db

import (
	"context"
	"fmt"
)

// NormalizeTimestamps rewrites timestamps stored with a trailing zone name
// (as produced when a time.Time is bound directly) to the plain layout that
// SQLite's date functions and string comparisons expect.
func (db *DB) NormalizeTimestamps() error {
	query := `UPDATE grade_events
		 SET timestamp = SUBSTR(timestamp, 1, 19)
		 WHERE length(timestamp) > 19 AND timestamp LIKE '% UTC'`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to normalize grade event timestamps: %w", err)
	}
	return nil
}
