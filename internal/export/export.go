// Package export writes gradebook entries and averages as tables, CSV, JSON
// and Parquet.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/j-veylop/gradebook-tui/internal/gradebook"
)

// Format is an output format.
type Format string

// Supported output formats.
const (
	FormatTable   Format = "table"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatTable, FormatCSV, FormatJSON, FormatParquet:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Report is everything the report and export commands print.
type Report struct {
	Entries         []gradebook.Entry          `json:"entries"`
	SubjectAverages []gradebook.SubjectAverage `json:"subjectAverages"`
	// OverallAverage is nil when there are no entries.
	OverallAverage *float64 `json:"overallAverage"`
}

// NewReport builds a report from a book.
func NewReport(b *gradebook.Book) Report {
	r := Report{
		Entries:         b.Entries(),
		SubjectAverages: b.SubjectAverages(),
	}
	if avg := b.OverallAverage(); !math.IsNaN(avg) {
		r.OverallAverage = &avg
	}
	return r
}

// WriteFile writes the report to path in the given format. Parquet output
// holds the entries only.
func WriteFile(r Report, format Format, path string) error {
	if path == "" {
		return errors.New("output path is required")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Write(file, r, format); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Write writes the report to w in the given format.
func Write(w io.Writer, r Report, format Format) error {
	switch format {
	case FormatCSV:
		return WriteEntriesCSV(w, r.Entries)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatParquet:
		return WriteEntriesParquet(w, r.Entries)
	case FormatTable, "":
		if err := WriteEntriesTable(w, r.Entries); err != nil {
			return err
		}
		return WriteAveragesTable(w, r.SubjectAverages, r.OverallAverage)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteEntriesCSV writes entries with a header row.
func WriteEntriesCSV(w io.Writer, entries []gradebook.Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "subject", "assignment", "score"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{strconv.Itoa(e.ID), e.Subject, e.Assignment, strconv.Itoa(e.Score)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	if r.Entries == nil {
		r.Entries = []gradebook.Entry{}
	}
	if r.SubjectAverages == nil {
		r.SubjectAverages = []gradebook.SubjectAverage{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
