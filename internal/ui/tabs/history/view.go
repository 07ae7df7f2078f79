package history

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gradebook-tui/internal/models"
	"github.com/j-veylop/gradebook-tui/internal/ui/components"
	"github.com/j-veylop/gradebook-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.errorMsg != "" {
		return m.renderError()
	}
	if m.historyData == nil {
		return m.renderLoading()
	}
	if !m.historyData.hasData() {
		return m.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTrendChart(),
		m.renderEvents(),
		m.renderActivity(),
		m.renderSessions(),
	)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) page(content string) string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderLoading() string {
	return m.page(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	return m.page(fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), m.errorMsg))
}

func (m *Model) renderEmpty() string {
	return m.page(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		styles.HelpStyle.Render("No history recorded yet."),
		styles.HelpStyle.Render("Every grade you add or delete is logged here."),
	))
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		title, "  ", rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String())))

	var subtitle string
	if !m.lastRefresh.IsZero() {
		subtitle = styles.HelpStyle.Render("Updated " + m.lastRefresh.Format("15:04:05"))
	}
	if m.loading {
		subtitle = styles.HelpStyle.Render("Refreshing...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func card(width int, title string, rows ...string) string {
	all := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, all...))
}

func indent(block string) []string {
	var rows []string
	for line := range strings.SplitSeq(block, "\n") {
		rows = append(rows, "  "+line)
	}
	return rows
}

func (m *Model) threshold() float64 {
	if m.source == nil {
		return 0
	}
	return m.source.Threshold()
}

func (m *Model) renderTrendChart() string {
	width := m.cardWidth()
	trend := m.historyData.trend

	if len(trend) == 0 {
		return card(width, "Average This Session",
			styles.HelpStyle.Render("  No changes in this session yet"))
	}

	averages := make([]float64, len(trend))
	for i, p := range trend {
		averages[i] = p.Average
	}

	threshold := m.threshold()
	chart := components.RenderTrendChart(averages, threshold, max(width-12, 30), 8,
		fmt.Sprintf("Last %d changes", len(averages)))

	rows := indent(chart)
	legend := []components.LegendItem{{Label: "average", Color: components.ChartAverageColor}}
	if threshold > 0 {
		legend = append(legend, components.LegendItem{Label: "alert threshold", Color: components.ChartThresholdColor})
	}
	rows = append(rows, "", "  "+components.RenderLegend(legend))

	return card(width, "Average This Session", rows...)
}

func (m *Model) renderEvents() string {
	width := m.cardWidth()
	events := m.historyData.events

	if len(events) == 0 {
		return card(width, "Recent Changes", styles.HelpStyle.Render("  Nothing in this range"))
	}

	rows := make([]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, "  "+formatEvent(e))
	}
	return card(width, "Recent Changes", rows...)
}

func formatEvent(e models.GradeEvent) string {
	when := e.Timestamp.Local().Format("Jan 02 15:04")

	var what string
	switch e.Action {
	case models.ActionAdd:
		what = styles.SuccessTextStyle.Render("+") + fmt.Sprintf(" %s / %s ", e.Subject, e.Assignment) +
			styles.GetScoreStyle(float64(e.Score)).Render(fmt.Sprintf("%d", e.Score))
	case models.ActionDelete:
		what = styles.ErrorTextStyle.Render("-") + fmt.Sprintf(" %s / %s (%d)", e.Subject, e.Assignment, e.Score)
	default:
		what = styles.InfoTextStyle.Render("↻") + fmt.Sprintf(" reloaded %d entries", e.EntryCount)
	}

	avg := "avg -"
	if e.HasAverage() {
		avg = fmt.Sprintf("avg %.0f", e.OverallAverage)
	}

	return fmt.Sprintf("%s  %s  %s", styles.HelpStyle.Render(when), what, styles.HelpStyle.Render(avg))
}

func (m *Model) renderActivity() string {
	width := m.cardWidth()
	activity := m.historyData.activity

	if len(activity) == 0 {
		return card(width, "Activity by Subject", styles.HelpStyle.Render("  Nothing in this range"))
	}

	values := make([]float64, len(activity))
	labels := make([]string, len(activity))
	for i, a := range activity {
		values[i] = float64(a.Adds)
		labels[i] = a.Subject
	}

	rows := indent(components.RenderBarChart(values, labels, max(width-12, 30)))
	rows = append(rows, "", styles.HelpStyle.Render("  Grades added per subject"))

	return card(width, "Activity by Subject", rows...)
}

func (m *Model) renderSessions() string {
	width := m.cardWidth()
	sessions := m.historyData.sessions

	if len(sessions) == 0 {
		return card(width, "Sessions", styles.HelpStyle.Render("  No sessions recorded"))
	}

	rows := make([]string, 0, len(sessions))
	for _, s := range sessions {
		last := "-"
		if !math.IsNaN(s.LastAverage) {
			last = styles.GetScoreStyle(s.LastAverage).Render(fmt.Sprintf("%.0f", s.LastAverage))
		}
		rows = append(rows, fmt.Sprintf("  %s  %s  +%d -%d  last avg %s",
			styles.HelpStyle.Render(s.StartedAt.Local().Format("Jan 02 15:04")),
			s.Duration().Round(time.Second).String(),
			s.Adds, s.Deletes, last,
		))
	}

	return card(width, "Sessions", rows...)
}
