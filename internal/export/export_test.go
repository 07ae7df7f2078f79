package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/gradebook-tui/internal/gradebook"
)

func sampleBook() *gradebook.Book {
	b := gradebook.New()
	b.AddEntry("math", "hw1", 80)
	b.AddEntry("science", "lab", 70)
	b.AddEntry("math", "hw2", 95)
	return b
}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{" parquet ", FormatParquet, false},
		{"json", FormatJSON, false},
		{"table", FormatTable, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGradeLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, LabelA},
		{90, LabelA},
		{89.99, LabelB},
		{80, LabelB},
		{70, LabelC},
		{60, LabelD},
		{59, LabelF},
		{0, LabelF},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeLabel(tt.score), "score %v", tt.score)
		assert.Equal(t, tt.want, ColorLabel(tt.score), "colors are disabled in tests")
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport(sampleBook())

	assert.Len(t, r.Entries, 3)
	require.Len(t, r.SubjectAverages, 2)
	require.NotNil(t, r.OverallAverage)
	assert.Equal(t, 82.0, *r.OverallAverage)

	empty := NewReport(gradebook.New())
	assert.Nil(t, empty.OverallAverage)
}

func TestWriteEntriesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEntriesCSV(&buf, sampleBook().Entries()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"id", "subject", "assignment", "score"}, rows[0])
	assert.Equal(t, []string{"1", "science", "lab", "70"}, rows[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewReport(sampleBook())))

	var decoded struct {
		Entries []gradebook.Entry `json:"entries"`
		Subject []struct {
			Subject string  `json:"subject"`
			Average float64 `json:"average"`
		} `json:"subjectAverages"`
		Overall *float64 `json:"overallAverage"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Len(t, decoded.Entries, 3)
	require.Len(t, decoded.Subject, 2)
	assert.InDelta(t, 87.5, decoded.Subject[0].Average, 1e-9)
	require.NotNil(t, decoded.Overall)
	assert.Equal(t, 82.0, *decoded.Overall)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewReport(gradebook.New())))

	out := buf.String()
	assert.Contains(t, out, `"entries": []`)
	assert.Contains(t, out, `"overallAverage": null`)
}

func TestWriteEntriesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "entries.parquet")
	entries := sampleBook().Entries()

	require.NoError(t, WriteFile(Report{Entries: entries}, FormatParquet, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[EntryRecord](file)
	defer reader.Close()

	records := make([]EntryRecord, reader.NumRows())
	n, err := reader.Read(records)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(entries), n)

	for i, e := range entries {
		assert.Equal(t, int64(e.ID), records[i].ID)
		assert.Equal(t, e.Subject, records[i].Subject)
		assert.Equal(t, e.Assignment, records[i].Assignment)
		assert.Equal(t, int32(e.Score), records[i].Score)
	}
	assert.Equal(t, LabelA, records[2].Label)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewReport(sampleBook()), FormatTable))

	out := buf.String()
	for _, want := range []string{"SUBJECT", "science", "hw2", "87.50", "overall", "82"} {
		assert.Contains(t, strings.ToLower(out), strings.ToLower(want))
	}
}

func TestWriteAveragesTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAveragesTable(&buf, nil, nil))
	assert.Equal(t, "No grades recorded.\n", buf.String())
}

func TestWriteFile_Errors(t *testing.T) {
	assert.Error(t, WriteFile(Report{}, FormatCSV, ""))
	assert.ErrorIs(t, Write(io.Discard, Report{}, Format("xml")), ErrUnknownFormat)
}
