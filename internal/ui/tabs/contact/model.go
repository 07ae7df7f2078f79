// Package contact provides the tab for entering and checking contact details.
package contact

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gradebook-tui/internal/app"
	"github.com/j-veylop/gradebook-tui/internal/validate"
)

type formField int

const (
	fieldName formField = iota
	fieldEmail
	fieldPhone
	fieldSubmit

	fieldCount = 4
)

// keyMap defines the key bindings specific to the contact tab.
type keyMap struct {
	Edit   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Escape key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop editing"),
		),
	}
}

// Model represents the contact tab state.
type Model struct {
	keys   keyMap
	width  int
	height int

	inputs       [3]textinput.Model
	focusedField formField
	editing      bool
	submitting   bool

	// errField is the field named by the last validation error.
	errField formField
	errMsg   string
	accepted string
}

// New creates a new contact tab. name pre-fills the name field.
func New(name string) *Model {
	placeholders := [3]string{"First Last", "you@example.com", "(555) 555-5555"}
	limits := [3]int{80, 120, 20}

	var inputs [3]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Width = 40
		inputs[i] = in
	}
	inputs[fieldName].SetValue(name)

	return &Model{
		keys:     defaultKeyMap(),
		inputs:   inputs,
		errField: -1,
	}
}

// Init initializes the contact tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether the form is being edited.
func (m *Model) CapturingInput() bool {
	return m.editing
}

// Form returns the current field values.
func (m *Model) Form() validate.ContactForm {
	return validate.ContactForm{
		Name:  m.inputs[fieldName].Value(),
		Email: m.inputs[fieldEmail].Value(),
		Phone: m.inputs[fieldPhone].Value(),
	}
}

// Update handles messages for the contact tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.ContactResultMsg:
		m.handleResult(msg)
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		if key.Matches(msg, m.keys.Edit) {
			return m, m.startEditing()
		}
		return m, nil
	}

	if m.editing && m.focusedField < fieldSubmit {
		var cmd tea.Cmd
		m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) startEditing() tea.Cmd {
	m.editing = true
	m.accepted = ""
	if m.errField >= 0 {
		m.focusedField = m.errField
	} else {
		m.focusedField = fieldName
	}
	m.updateFocus()
	return textinput.Blink
}

func (m *Model) stopEditing() {
	m.editing = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) updateEditing(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.stopEditing()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.focusedField = (m.focusedField + 1) % fieldCount
		m.updateFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Prev):
		m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount
		m.updateFocus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.focusedField < fieldPhone {
			m.focusedField++
			m.updateFocus()
			return m, textinput.Blink
		}
		return m, m.submit()
	}

	if m.focusedField == fieldSubmit {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	m.submitting = true
	m.errMsg = ""
	m.errField = -1

	form := m.Form()
	return func() tea.Msg {
		return app.SubmitContactMsg{Form: form}
	}
}

func (m *Model) handleResult(msg app.ContactResultMsg) {
	m.submitting = false

	if msg.Error == nil {
		m.errMsg = ""
		m.errField = -1
		m.accepted = "Contact details accepted."
		m.stopEditing()
		return
	}

	m.accepted = ""
	var verr *validate.Error
	if !errors.As(msg.Error, &verr) {
		m.errMsg = msg.Error.Error()
		return
	}

	m.errMsg = verr.Message
	if f, ok := fieldByName(verr.Field); ok {
		m.errField = f
		if m.editing {
			m.focusedField = f
			m.updateFocus()
		}
	}
}

func fieldByName(name string) (formField, bool) {
	switch name {
	case "name":
		return fieldName, true
	case "email":
		return fieldEmail, true
	case "phone":
		return fieldPhone, true
	}
	return 0, false
}

func (m *Model) updateFocus() {
	for i := range m.inputs {
		if formField(i) == m.focusedField {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// SetSize sets the available size for the contact tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	inputWidth := min(max(width-24, 20), 60)
	for i := range m.inputs {
		m.inputs[i].Width = inputWidth
	}
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Escape}
	}
	return []key.Binding{m.keys.Edit}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Edit},
		{m.keys.Next, m.keys.Prev, m.keys.Submit, m.keys.Escape},
	}
}
