package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/j-veylop/gradebook-tui/internal/export"
	"github.com/j-veylop/gradebook-tui/internal/gradebook"
	"github.com/j-veylop/gradebook-tui/internal/models"
	"github.com/j-veylop/gradebook-tui/internal/services/roster"
)

var errNoRoster = errors.New("no roster file: pass --roster or set GRADEBOOK_ROSTER_PATH")

// loadBook reads the roster file into a new book without watching it.
func loadBook(path string) (*gradebook.Book, error) {
	if path == "" {
		return nil, errNoRoster
	}

	f, err := roster.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	book := gradebook.New()
	if err := book.Restore(f.Entries, f.NextID); err != nil {
		return nil, fmt.Errorf("failed to load roster %s: %w", path, err)
	}
	return book, nil
}

func newReportCmd(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print roster entries and averages as tables.",
		Example: `  gradebook report --roster ~/grades.json
  GRADEBOOK_ROSTER_PATH=~/grades.json gradebook report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, err := loadBook(rt.cfg.RosterPath)
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), export.NewReport(book), export.FormatTable)
		},
	}
}

func newExportCmd(rt *cliState) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export roster entries as csv, json, parquet or a table.",
		Long: `Export the roster entries. JSON output also carries the subject and
overall averages. Parquet output needs --out since it is binary.`,
		Example: `  gradebook export --roster grades.json --format csv
  gradebook export --roster grades.json --format parquet --out grades.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			book, err := loadBook(rt.cfg.RosterPath)
			if err != nil {
				return err
			}
			report := export.NewReport(book)

			if out == "" {
				if f == export.FormatParquet {
					return errors.New("parquet export needs --out")
				}
				return export.Write(cmd.OutOrStdout(), report, f)
			}

			if err := export.WriteFile(report, f, out); err != nil {
				return err
			}
			cmd.PrintErrf("Wrote %d entries to %s\n", len(report.Entries), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "output format: csv, json, parquet, table")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func newHistoryCmd(rt *cliState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recent grade changes from the history database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			mgr, err := openManager(rt, false)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			events, err := mgr.RecentEvents(limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history recorded.")
				return nil
			}
			return writeEventsTable(cmd, events)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events to show")

	return cmd
}

func writeEventsTable(cmd *cobra.Command, events []models.GradeEvent) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header([]string{"Time", "Action", "Subject", "Assignment", "Score", "Average"})

	data := make([][]string, 0, len(events))
	for _, e := range events {
		avg := "-"
		if e.HasAverage() {
			avg = strconv.FormatFloat(e.OverallAverage, 'f', 0, 64)
		}

		subject, assignment, score := e.Subject, e.Assignment, strconv.Itoa(e.Score)
		if e.Action == models.ActionReload {
			subject, assignment, score = fmt.Sprintf("%d entries", e.EntryCount), "", ""
		}

		data = append(data, []string{
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			string(e.Action),
			subject,
			assignment,
			score,
			avg,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
