package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/j-veylop/gradebook-tui/internal/gradebook"
)

// Letter grade labels.
const (
	LabelA = "A"
	LabelB = "B"
	LabelC = "C"
	LabelD = "D"
	LabelF = "F"
)

// Colors used for letter grades in terminal tables.
var (
	excellentColor = color.New(color.FgGreen, color.Bold)
	goodColor      = color.New(color.FgCyan)
	fairColor      = color.New(color.FgYellow)
	failColor      = color.New(color.FgRed, color.Bold)
)

// GradeLabel returns the letter grade for a score on a 100 point scale.
func GradeLabel(score float64) string {
	switch {
	case score >= 90:
		return LabelA
	case score >= 80:
		return LabelB
	case score >= 70:
		return LabelC
	case score >= 60:
		return LabelD
	default:
		return LabelF
	}
}

// ColorLabel returns the letter grade colored for console output.
func ColorLabel(score float64) string {
	label := GradeLabel(score)

	switch label {
	case LabelA:
		return excellentColor.Sprint(label)
	case LabelB:
		return goodColor.Sprint(label)
	case LabelC, LabelD:
		return fairColor.Sprint(label)
	default:
		return failColor.Sprint(label)
	}
}

// WriteEntriesTable renders entries as a table.
func WriteEntriesTable(w io.Writer, entries []gradebook.Entry) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Subject", "Assignment", "Score", "Grade"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{
			strconv.Itoa(e.ID),
			e.Subject,
			e.Assignment,
			strconv.Itoa(e.Score),
			ColorLabel(float64(e.Score)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteAveragesTable renders per-subject averages followed by the overall
// average. The overall row is omitted when overall is nil.
func WriteAveragesTable(w io.Writer, averages []gradebook.SubjectAverage, overall *float64) error {
	if len(averages) == 0 {
		_, err := fmt.Fprintln(w, "No grades recorded.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Subject", "Entries", "Average", "Grade"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(averages)+1)
	for _, a := range averages {
		data = append(data, []string{
			a.Subject,
			strconv.Itoa(a.Count),
			strconv.FormatFloat(a.Average, 'f', 2, 64),
			ColorLabel(a.Average),
		})
	}
	if overall != nil {
		data = append(data, []string{
			"overall",
			"",
			strconv.FormatFloat(*overall, 'f', 0, 64),
			ColorLabel(*overall),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
