// Package gradebook provides the tab for viewing, adding and deleting grades.
package gradebook

import (
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/gradebook-tui/internal/app"
	"github.com/j-veylop/gradebook-tui/internal/export"
	"github.com/j-veylop/gradebook-tui/internal/gradebook"
	"github.com/j-veylop/gradebook-tui/internal/ui/components"
	"github.com/j-veylop/gradebook-tui/internal/ui/styles"
	"github.com/j-veylop/gradebook-tui/internal/validate"
)

// formField represents which field is currently focused in the add form.
type formField int

const (
	fieldSubject formField = iota
	fieldAssignment
	fieldScore
	fieldSubmit
	fieldCancel

	fieldCount = 5
)

type mode int

const (
	modeBrowse mode = iota
	modeAdding
	modeConfirmDelete
)

// keyMap defines the key bindings specific to the gradebook tab.
type keyMap struct {
	Add    key.Binding
	Delete key.Binding
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Next   key.Binding
	Escape key.Binding
}

// defaultKeyMap returns the default key bindings for the gradebook tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add grade"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete", "x"),
			key.WithHelp("d", "delete grade"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the gradebook tab state.
type Model struct {
	state     *app.State
	threshold float64
	table     table.Model
	bar       components.AverageBar
	spinner   components.LoadingSpinner
	keys      keyMap
	width     int
	height    int

	mode         mode
	focusedField formField
	inputs       [3]textinput.Model
	submitting   bool
	formError    string

	deleteEntry gradebook.Entry
}

// New creates a new gradebook tab. threshold marks averages below it; zero
// disables the marking.
func New(state *app.State, threshold float64) *Model {
	placeholders := [3]string{"Math", "Homework 1", "0-100"}
	limits := [3]int{40, 60, 10}

	var inputs [3]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Width = 40
		inputs[i] = in
	}

	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:     state,
		threshold: threshold,
		table:     t,
		bar:       components.NewAverageBar(),
		spinner:   components.NewSpinner("Loading gradebook..."),
		keys:      defaultKeyMap(),
		inputs:    inputs,
	}
}

// Init initializes the gradebook tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// CapturingInput reports whether the add form or delete prompt is open.
func (m *Model) CapturingInput() bool {
	return m.mode != modeBrowse
}

// Update handles messages for the gradebook tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.BookLoadedMsg:
		m.updateTableData()
		return m, nil

	case app.AddGradeResultMsg:
		m.handleAddResult(msg)
		return m, nil
	}

	if m.state.IsInitialLoading() {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.mode {
	case modeAdding:
		return m.updateAddForm(msg)
	case modeConfirmDelete:
		return m.updateDeleteConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Add):
		return m, m.openForm()

	case key.Matches(keyMsg, m.keys.Delete):
		if id, ok := m.selectedID(); ok {
			if entry, found := m.state.GetEntry(id); found {
				m.mode = modeConfirmDelete
				m.deleteEntry = entry
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(keyMsg)
	return m, cmd
}

func (m *Model) openForm() tea.Cmd {
	m.mode = modeAdding
	m.submitting = false
	m.formError = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.focusedField = fieldSubject
	m.updateFormFocus()
	return textinput.Blink
}

func (m *Model) closeForm() {
	m.mode = modeBrowse
	m.submitting = false
	m.formError = ""
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// updateAddForm handles the add grade form.
func (m *Model) updateAddForm(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.closeForm()
			return m, nil

		case "tab", "down":
			m.focusedField = (m.focusedField + 1) % fieldCount
			m.updateFormFocus()
			return m, textinput.Blink

		case "shift+tab", "up":
			m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount
			m.updateFormFocus()
			return m, textinput.Blink

		case "enter":
			switch m.focusedField {
			case fieldCancel:
				m.closeForm()
				return m, nil
			case fieldSubmit, fieldScore:
				return m, m.submit()
			default:
				m.focusedField++
				m.updateFormFocus()
				return m, textinput.Blink
			}
		}
	}

	if m.focusedField > fieldScore {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return m, cmd
}

// submit sends the raw form to the service. The form stays open until the
// result arrives so validation errors can be shown next to it.
func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	m.submitting = true
	m.formError = ""

	form := m.form()
	return func() tea.Msg {
		return app.AddGradeMsg{Form: form}
	}
}

func (m *Model) form() validate.GradeForm {
	return validate.GradeForm{
		Subject:    m.inputs[fieldSubject].Value(),
		Assignment: m.inputs[fieldAssignment].Value(),
		Score:      m.inputs[fieldScore].Value(),
	}
}

func (m *Model) handleAddResult(msg app.AddGradeResultMsg) {
	if m.mode != modeAdding {
		return
	}
	m.submitting = false

	if msg.Error == nil {
		m.closeForm()
		return
	}

	var verr *validate.Error
	if errors.As(msg.Error, &verr) {
		m.formError = verr.Message
		if f, ok := fieldByName(verr.Field); ok {
			m.focusedField = f
			m.updateFormFocus()
		}
		return
	}
	m.formError = msg.Error.Error()
}

func fieldByName(name string) (formField, bool) {
	switch name {
	case "subject":
		return fieldSubject, true
	case "assignment":
		return fieldAssignment, true
	case "score":
		return fieldScore, true
	}
	return 0, false
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		m.mode = modeBrowse
		id := m.deleteEntry.ID
		m.deleteEntry = gradebook.Entry{}
		return m, func() tea.Msg {
			return app.DeleteGradeMsg{ID: id}
		}
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.deleteEntry = gradebook.Entry{}
	}
	return m, nil
}

// updateFormFocus updates which form field is focused.
func (m *Model) updateFormFocus() {
	for i := range m.inputs {
		if formField(i) == m.focusedField {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) selectedID() (int, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, false
	}
	return id, true
}

// updateTableData updates the table with current entries.
func (m *Model) updateTableData() {
	entries := m.state.GetSnapshot().Entries
	rows := make([]table.Row, 0, len(entries))

	for _, e := range entries {
		rows = append(rows, table.Row{
			strconv.Itoa(e.ID),
			e.Subject,
			e.Assignment,
			strconv.Itoa(e.Score),
			export.GradeLabel(float64(e.Score)),
		})
	}

	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func columnsFor(width int) []table.Column {
	assignmentWidth := min(max(width-50, 16), 40)
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Subject", Width: 16},
		{Title: "Assignment", Width: assignmentWidth},
		{Title: "Score", Width: 6},
		{Title: "Grade", Width: 6},
	}
}

// SetSize sets the available size for the gradebook tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height/2-4, 3))
	m.table.SetColumns(columnsFor(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.mode == modeAdding {
		return []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Escape}
	}
	return []key.Binding{m.keys.Add, m.keys.Delete, m.keys.Up, m.keys.Down}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Add, m.keys.Delete},
		{m.keys.Up, m.keys.Down},
		{m.keys.Next, m.keys.Submit, m.keys.Escape},
	}
}
