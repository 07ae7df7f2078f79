package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gradebook-tui/internal/app"
	"github.com/j-veylop/gradebook-tui/internal/config"
	"github.com/j-veylop/gradebook-tui/internal/logger"
	"github.com/j-veylop/gradebook-tui/internal/services"
	"github.com/j-veylop/gradebook-tui/internal/ui/tabs/contact"
	"github.com/j-veylop/gradebook-tui/internal/ui/tabs/gradebook"
	"github.com/j-veylop/gradebook-tui/internal/ui/tabs/history"
	"github.com/j-veylop/gradebook-tui/internal/ui/tabs/info"
)

// RunTUI starts the service manager and runs the Bubble Tea program.
func RunTUI(ctx context.Context, cfg *config.Config) error {
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Order follows the app.TabID constants.
	state := model.GetState()
	model.SetTabs([]app.Tab{
		gradebook.New(state, svcManager.Threshold()),
		contact.New(cfg.StudentName),
		history.New(state, svcManager),
		info.New(state, cfg, svcManager.SessionID()),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
