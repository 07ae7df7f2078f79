package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if db.Path() != dbPath {
		t.Errorf("Expected path %s, got %s", dbPath, db.Path())
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database with nested path: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Error("Nested directories were not created")
	}
}

func TestNew_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer second.Close()
}

func TestSchema_TablesExist(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	var name string
	err := db.QueryRowContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", "grade_events").Scan(&name)
	if err != nil {
		t.Errorf("Table grade_events does not exist: %v", err)
	}
}

func TestNormalizeTimestamps(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	_, err := db.ExecContext(context.Background(),
		`INSERT INTO grade_events (session_id, timestamp, action) VALUES (?, ?, ?)`,
		"s1", "2024-03-10 12:00:00 +0000 UTC", "add")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := db.NormalizeTimestamps(); err != nil {
		t.Fatalf("NormalizeTimestamps failed: %v", err)
	}

	var ts string
	err = db.QueryRowContext(context.Background(),
		"SELECT CAST(timestamp AS TEXT) FROM grade_events WHERE session_id = 's1'").Scan(&ts)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if ts != "2024-03-10 12:00:00" {
		t.Errorf("timestamp = %q, want trimmed layout", ts)
	}
}

func TestVacuum(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.Vacuum(); err != nil {
		t.Errorf("Vacuum failed: %v", err)
	}
}

func TestClose(t *testing.T) {
	db := newTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Verify database is closed by trying to query
	_, err := db.QueryContext(context.Background(), "SELECT 1")
	if err == nil {
		t.Error("Expected error querying closed database")
	}
}

func TestParseTimeString(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2024-03-10 12:00:00", true},
		{"2024-03-10T12:00:00Z", true},
		{"2024-03-10 12:00:00 +0000 UTC", true},
		{"yesterday", false},
		{"", false},
	}

	for _, tt := range tests {
		if _, ok := parseTimeString(tt.in); ok != tt.ok {
			t.Errorf("parseTimeString(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

// Helper to create a test database
func newTestDB(t *testing.T) *DB {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return db
}
