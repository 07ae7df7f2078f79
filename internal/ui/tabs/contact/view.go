package contact

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gradebook-tui/internal/ui/styles"
)

var labels = [3]string{"Name:", "Email:", "Phone:"}

// View renders the contact tab.
func (m *Model) View() string {
	cardWidth := min(max(m.width-10, 50), 80)

	rows := []string{
		styles.TitleStyle.Render("Contact Details"),
		styles.HelpStyle.Render("Phone format: (555) 555-5555"),
		"",
	}

	for i, label := range labels {
		field := formField(i)
		focused := m.editing && m.focusedField == field

		labelStyle := styles.BlurredStyle
		prefix := "  "
		if focused {
			labelStyle = styles.FocusedStyle
			prefix = "> "
		}
		if field == m.errField {
			labelStyle = styles.ErrorTextStyle
		}
		rows = append(rows, labelStyle.Render(prefix+label))

		inputStyle := styles.BlurredBorderStyle
		if focused {
			inputStyle = styles.FocusedBorderStyle
		}
		rows = append(rows, inputStyle.Width(cardWidth-10).Render(m.inputs[i].View()), "")
	}

	submitStyle := styles.ButtonInactiveStyle
	if m.editing && m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	rows = append(rows, submitStyle.Render(" Submit "), "")

	switch {
	case m.errMsg != "":
		rows = append(rows, styles.ErrorTextStyle.Render(m.errMsg))
	case m.submitting:
		rows = append(rows, styles.InfoTextStyle.Render("Checking..."))
	case m.accepted != "":
		rows = append(rows, styles.SuccessTextStyle.Render(m.accepted))
	}

	content := styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter()))
}

func (m *Model) renderFooter() string {
	var shortcuts []string
	if m.editing {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Tab") + " next",
			styles.HelpKeyStyle.Render("Enter") + " submit",
			styles.HelpKeyStyle.Render("Esc") + " done",
		}
	} else {
		shortcuts = []string{styles.HelpKeyStyle.Render("e") + " edit"}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}
