package cli

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/gradebook-tui/internal/services"
	"github.com/j-veylop/gradebook-tui/internal/validate"
)

// userError turns validation failures into their display message.
func userError(err error) error {
	var verr *validate.Error
	if errors.As(err, &verr) && verr.Message != "" {
		return errors.New(verr.Message)
	}
	return err
}

// openManager starts a service manager for a one-shot command. Mutating
// commands need a roster, since an in-memory book ends with the process.
func openManager(rt *cliState, needRoster bool) (*services.Manager, error) {
	if needRoster && rt.cfg.RosterPath == "" {
		return nil, errNoRoster
	}
	return services.NewManager(rt.cfg)
}

func printAverage(cmd *cobra.Command, snap services.Snapshot) {
	if math.IsNaN(snap.OverallAverage) {
		fmt.Fprintln(cmd.OutOrStdout(), "Overall average: -")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Overall average: %.0f\n", snap.OverallAverage)
}

func newAddCmd(rt *cliState) *cobra.Command {
	var form validate.GradeForm

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a grade to the roster.",
		Example: `  gradebook add --roster grades.json --subject math --assignment "hw 1" --score 92`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := openManager(rt, true)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			entry, err := mgr.AddGrade(form)
			if err != nil {
				return userError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s / %s: %d\n", entry.ID, entry.Subject, entry.Assignment, entry.Score)
			printAverage(cmd, mgr.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Subject, "subject", "", "subject name")
	cmd.Flags().StringVar(&form.Assignment, "assignment", "", "assignment name")
	cmd.Flags().StringVar(&form.Score, "score", "", "score, a non-negative number")

	return cmd
}

func newDeleteCmd(rt *cliState) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a grade from the roster by id.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := openManager(rt, true)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			if err := mgr.DeleteGrade(id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			printAverage(cmd, mgr.Snapshot())
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", -1, "entry id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newContactCmd(rt *cliState) *cobra.Command {
	var form validate.ContactForm

	cmd := &cobra.Command{
		Use:     "contact",
		Short:   "Check contact details.",
		Example: `  gradebook contact --name "Ada Lovelace" --email ada@example.com --phone "(555) 555-5555"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if form.Name == "" {
				form.Name = rt.cfg.StudentName
			}
			if err := validate.CheckContact(form); err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Contact details accepted.")
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "first and last name (default student_name)")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Phone, "phone", "", `phone number, e.g. "(555) 555-5555"`)

	return cmd
}

func newPruneCmd(rt *cliState) *cobra.Command {
	var (
		days   int
		vacuum bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history older than the given number of days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}

			mgr, err := openManager(rt, false)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			n, err := mgr.PruneHistory(time.Duration(days) * 24 * time.Hour)
			if err != nil {
				return fmt.Errorf("failed to prune history: %w", err)
			}
			if vacuum {
				if err := mgr.Database().Vacuum(); err != nil {
					return fmt.Errorf("failed to vacuum database: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history rows older than %d days\n", n, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "keep this many days of history")
	cmd.Flags().BoolVar(&vacuum, "vacuum", false, "compact the database afterwards")

	return cmd
}
