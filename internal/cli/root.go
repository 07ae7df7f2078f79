// Package cli defines the gradebook command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/j-veylop/gradebook-tui/internal/config"
	"github.com/j-veylop/gradebook-tui/internal/logger"
	"github.com/j-veylop/gradebook-tui/internal/version"
)

// skipSetup marks commands that run without configuration or logging.
const skipSetup = "skip-setup"

// TUIRunner runs the interactive UI until the user quits or ctx is done.
type TUIRunner func(ctx context.Context, cfg *config.Config) error

// cliState is shared by every command of one root command.
type cliState struct {
	v         *viper.Viper
	cfg       *config.Config
	logCloser io.Closer
	runTUI    TUIRunner
}

// Execute runs the command line with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd(RunTUI).ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. runTUI is started by the bare command.
func NewRootCmd(runTUI TUIRunner) *cobra.Command {
	rt := &cliState{v: viper.New(), runTUI: runTUI}

	root := &cobra.Command{
		Use:   version.Name,
		Short: "Track grades and averages in the terminal.",
		Long: `Gradebook keeps a list of graded assignments and shows the overall and
per-subject averages as they change.

Running it without a subcommand starts the interactive UI. With --roster
the grades are kept in a JSON file that is reloaded when edited elsewhere.`,
		Version:            version.GetVersion(),
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableSuggestions: true,
		Args:               cobra.NoArgs,
		PersistentPreRunE:  rt.setup,
		PersistentPostRunE: rt.teardown,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.runTUI == nil {
				return cmd.Help()
			}
			return rt.runTUI(cmd.Context(), rt.cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.String("db", "", "history database path (default ~/.config/gradebook/history.db)")
	flags.String("roster", "", "roster JSON file; empty keeps grades in memory")
	flags.Float64("threshold", 0, "overall average that triggers an alert (0 disables)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-file", "", "log file path")
	flags.String("student", "", "student name used to pre-fill the contact form")

	bind := map[string]string{
		config.KeyDatabasePath:   "db",
		config.KeyRosterPath:     "roster",
		config.KeyAlertThreshold: "threshold",
		config.KeyLogLevel:       "log-level",
		config.KeyLogFile:        "log-file",
		config.KeyStudentName:    "student",
	}
	for key, name := range bind {
		_ = rt.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newReportCmd(rt),
		newExportCmd(rt),
		newHistoryCmd(rt),
		newAddCmd(rt),
		newDeleteCmd(rt),
		newContactCmd(rt),
		newPruneCmd(rt),
		newVersionCmd(),
	)

	return root
}

// setup loads configuration and redirects logging to the log file.
func (rt *cliState) setup(cmd *cobra.Command, _ []string) error {
	if _, ok := cmd.Annotations[skipSetup]; ok {
		return nil
	}

	cfg, err := config.Load(rt.v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	rt.cfg = cfg

	closer, err := logger.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	rt.logCloser = closer

	logger.Debug("configuration loaded", "command", cmd.Name(), "database", cfg.DatabasePath, "roster", cfg.RosterPath)
	return nil
}

func (rt *cliState) teardown(_ *cobra.Command, _ []string) error {
	if rt.logCloser == nil {
		return nil
	}
	err := rt.logCloser.Close()
	rt.logCloser = nil
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version and build details.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: ""},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s CLI\n", version.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "  Version: %s\n", version.GetVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "  Commit:  %s\n", version.GetCommit())
			fmt.Fprintf(cmd.OutOrStdout(), "  Built:   %s\n", version.GetDate())
		},
	}
}
