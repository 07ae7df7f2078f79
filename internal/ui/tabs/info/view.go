package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gradebook-tui/internal/ui/styles"
	"github.com/j-veylop/gradebook-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderBookCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config != nil {
		roster := m.config.RosterPath
		if roster == "" {
			roster = "in-memory (no roster file)"
		}
		threshold := "disabled"
		if m.config.AlertThreshold > 0 {
			threshold = fmt.Sprintf("%.0f", m.config.AlertThreshold)
		}
		student := m.config.StudentName
		if student == "" {
			student = "-"
		}

		rows = append(rows,
			renderRow("Roster", roster),
			renderRow("History DB", m.config.DatabasePath),
			renderRow("Alert Below", threshold),
			renderRow("Student", student),
			renderRow("Log Level", m.config.LogLevel),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderBookCard() string {
	snap := m.state.GetSnapshot()

	average := "-"
	if snap.HasAverage() {
		average = fmt.Sprintf("%.2f", snap.OverallAverage)
	}

	rows := []string{
		styles.CardTitleStyle.Render("Session"),
		"",
		renderRow("Session ID", m.sessionID),
		renderRow("Entries", fmt.Sprintf("%d", len(snap.Entries))),
		renderRow("Subjects", fmt.Sprintf("%d", len(snap.SubjectAverages))),
		renderRow("Total Points", fmt.Sprintf("%d", snap.Sum)),
		renderRow("Average", average),
		renderRow("Next ID", fmt.Sprintf("%d", snap.NextID)),
	}

	if alert := m.state.GetLastAlert(); alert != nil {
		rows = append(rows, "", styles.WarningTextStyle.Render(
			fmt.Sprintf("Last alert: average %.0f fell below %.0f", alert.Average, alert.Threshold)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Gradebook"),
		"",
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(14).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
