package gradebook

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gradebook-tui/internal/export"
	"github.com/j-veylop/gradebook-tui/internal/ui/components"
	"github.com/j-veylop/gradebook-tui/internal/ui/styles"
)

const sparklineWidth = 24

// View renders the gradebook tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{m.renderTitle()}

	switch m.mode {
	case modeAdding:
		sections = append(sections, m.renderAddForm())
	case modeConfirmDelete:
		sections = append(sections, m.renderDeleteConfirm(), m.renderTable())
	default:
		if overall := m.renderOverall(); overall != "" {
			sections = append(sections, overall)
		}
		sections = append(sections, m.renderTable())
		if averages := m.renderSubjectAverages(); averages != "" {
			sections = append(sections, averages)
		}
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth(minWidth int) int {
	return max(m.width-6, minWidth)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Gradebook")

	count := m.state.GetEntryCount()
	noun := "entries"
	if count == 1 {
		noun = "entry"
	}
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d %s recorded", count, noun))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderOverall renders the overall average line. It renders nothing while
// the book is empty.
func (m *Model) renderOverall() string {
	snap := m.state.GetSnapshot()
	if !snap.HasAverage() {
		return ""
	}

	avg := snap.OverallAverage
	label := styles.CardTitleStyle.Render("Overall Average")
	value := styles.GetAverageStyle(avg, m.threshold).
		Render(fmt.Sprintf("%s (%s)", formatScore(avg), export.GradeLabel(avg)))

	line := lipgloss.JoinHorizontal(lipgloss.Center, label, "  ", value)
	if m.threshold > 0 && avg < m.threshold {
		line = lipgloss.JoinHorizontal(lipgloss.Center, line, "  ",
			styles.ScoreBelowThresholdStyle.Render(fmt.Sprintf("below %s", formatScore(m.threshold))))
	}

	rows := []string{line, m.bar.ViewCompact(avg, min(m.cardWidth(30), 60))}
	if len(snap.Entries) > 1 {
		scores := make([]float64, len(snap.Entries))
		for i, e := range snap.Entries {
			scores[i] = float64(e.Score)
		}
		rows = append(rows, styles.HelpStyle.Render("recent ")+components.RenderSparkline(scores, sparklineWidth))
	}

	return lipgloss.JoinVertical(lipgloss.Left, append(rows, "")...)
}

func (m *Model) renderTable() string {
	if m.state.GetEntryCount() == 0 {
		return m.renderEmptyState()
	}
	return styles.CardStyle.Width(m.cardWidth(60)).Render(m.table.View())
}

func (m *Model) renderEmptyState() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Grades Yet"),
		"",
		styles.InfoTextStyle.Render("Press 'a' to add a grade"),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth(40)).Render(content)
}

// renderSubjectAverages renders one bar per subject, in the order subjects
// were first graded. It renders nothing when there are no subjects.
func (m *Model) renderSubjectAverages() string {
	subjects := m.state.GetSnapshot().SubjectAverages
	if len(subjects) == 0 {
		return ""
	}

	width := m.cardWidth(40)
	rows := []string{styles.CardTitleStyle.Render("Averages by Subject")}
	for _, s := range subjects {
		rows = append(rows, m.bar.View(s.Average, s.Subject, width-4))
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderAddForm() string {
	cardWidth := min(max(m.width-10, 50), 80)

	labels := [3]string{"Subject:", "Assignment:", "Score:"}
	rows := []string{styles.CardTitleStyle.Render("Add Grade"), ""}

	for i, label := range labels {
		focused := m.focusedField == formField(i)
		if focused {
			rows = append(rows, styles.FocusedStyle.Render("> "+label))
		} else {
			rows = append(rows, styles.BlurredStyle.Render("  "+label))
		}

		inputStyle := styles.BlurredBorderStyle
		if focused {
			inputStyle = styles.FocusedBorderStyle
		}
		rows = append(rows, inputStyle.Width(cardWidth-10).Render(m.inputs[i].View()), "")
	}

	submitStyle := styles.ButtonInactiveStyle
	cancelStyle := styles.ButtonInactiveStyle
	if m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	if m.focusedField == fieldCancel {
		cancelStyle = styles.ButtonActiveStyle
	}

	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
		submitStyle.Render(" Add Grade "),
		"  ",
		cancelStyle.Render(" Cancel "),
	), "")

	switch {
	case m.formError != "":
		rows = append(rows, styles.ErrorTextStyle.Render(m.formError), "")
	case m.submitting:
		rows = append(rows, styles.InfoTextStyle.Render("Saving..."), "")
	}

	rows = append(rows, styles.HelpStyle.Render("Tab: next field | Enter: submit | Esc: cancel"))

	return styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderDeleteConfirm() string {
	e := m.deleteEntry
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Grade?"),
		"",
		fmt.Sprintf("#%d %s", e.ID, styles.SubjectStyle.Render(e.Subject)),
		styles.ErrorTextStyle.Render(fmt.Sprintf("%s: %d", e.Assignment, e.Score)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)

	return styles.CenterHorizontal(styles.ModalContentStyle.Width(50).Render(content), m.width)
}

func (m *Model) renderFooter() string {
	var shortcuts []string

	switch m.mode {
	case modeAdding:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Tab") + " next",
			styles.HelpKeyStyle.Render("Enter") + " submit",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case modeConfirmDelete:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	default:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("a") + " add",
			styles.HelpKeyStyle.Render("d") + " delete",
			styles.HelpKeyStyle.Render("r") + " refresh",
		}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}

func formatScore(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
