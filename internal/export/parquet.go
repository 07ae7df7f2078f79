package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/j-veylop/gradebook-tui/internal/gradebook"
)

// EntryRecord is the Parquet row layout of a gradebook entry.
type EntryRecord struct {
	// ID is the entry id within its gradebook
	ID int64 `parquet:"id,snappy"`

	// Subject is the lowercased subject name
	Subject string `parquet:"subject,snappy,dict"`

	// Assignment is the lowercased assignment name
	Assignment string `parquet:"assignment,snappy"`

	// Score is the integer score
	Score int32 `parquet:"score,snappy"`

	// Label is the letter grade for the score
	Label string `parquet:"label,snappy,dict"`
}

// ConvertEntries maps entries to Parquet records.
func ConvertEntries(entries []gradebook.Entry) []EntryRecord {
	records := make([]EntryRecord, len(entries))
	for i, e := range entries {
		records[i] = EntryRecord{
			ID:         int64(e.ID),
			Subject:    e.Subject,
			Assignment: e.Assignment,
			Score:      int32(e.Score),
			Label:      GradeLabel(float64(e.Score)),
		}
	}
	return records
}

// WriteEntriesParquet writes entries to w as a single Parquet file.
func WriteEntriesParquet(w io.Writer, entries []gradebook.Entry) error {
	writer := parquet.NewGenericWriter[EntryRecord](w)

	if _, err := writer.Write(ConvertEntries(entries)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
