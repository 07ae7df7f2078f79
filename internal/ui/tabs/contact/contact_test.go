package contact

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gradebook-tui/internal/app"
	"github.com/j-veylop/gradebook-tui/internal/validate"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// fill types values into the three fields, starting from the name field.
func fill(m *Model, name, email, phone string) {
	m.Update(runes(name))
	m.Update(tab)
	m.Update(runes(email))
	m.Update(tab)
	m.Update(runes(phone))
}

func TestNew(t *testing.T) {
	m := New("Ada Lovelace")
	if got := m.Form().Name; got != "Ada Lovelace" {
		t.Errorf("Name = %q", got)
	}
	if m.CapturingInput() {
		t.Error("A new tab should not capture input")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_EditToggle(t *testing.T) {
	m := New("")
	m.SetSize(80, 30)

	m.Update(runes("x"))
	if m.CapturingInput() {
		t.Error("Unbound keys should not start editing")
	}

	m.Update(runes("e"))
	if !m.CapturingInput() {
		t.Fatal("e should start editing")
	}
	if m.focusedField != fieldName {
		t.Errorf("focusedField = %d, want name", m.focusedField)
	}

	m.Update(esc)
	if m.CapturingInput() {
		t.Error("esc should stop editing")
	}
}

func TestModel_SubmitValid(t *testing.T) {
	m := New("")
	m.Update(enter)
	fill(m, "Ada Lovelace", "ada@example.com", "(555) 555-1234")

	_, cmd := m.Update(enter)
	if cmd == nil {
		t.Fatal("enter on the phone field should submit")
	}
	msg, ok := cmd().(app.SubmitContactMsg)
	if !ok {
		t.Fatalf("submit produced %T", cmd())
	}
	want := validate.ContactForm{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "(555) 555-1234"}
	if msg.Form != want {
		t.Errorf("Form = %+v, want %+v", msg.Form, want)
	}

	if _, cmd := m.Update(enter); cmd != nil {
		t.Error("A second submit should wait for the result")
	}

	m.Update(app.ContactResultMsg{Form: msg.Form, Error: validate.CheckContact(msg.Form)})
	if m.CapturingInput() {
		t.Error("Editing should stop after acceptance")
	}
	m.SetSize(100, 40)
	if !strings.Contains(m.View(), "Contact details accepted") {
		t.Error("View should confirm acceptance")
	}
}

func TestModel_SubmitInvalidFocusesField(t *testing.T) {
	tests := []struct {
		name  string
		form  validate.ContactForm
		field formField
	}{
		{"one name", validate.ContactForm{Name: "Ada", Email: "a@b.com", Phone: "(555) 555-1234"}, fieldName},
		{"no domain", validate.ContactForm{Name: "Ada Lovelace", Email: "ada@", Phone: "(555) 555-1234"}, fieldEmail},
		{"bad phone", validate.ContactForm{Name: "Ada Lovelace", Email: "a@b.com", Phone: "555-555-1234"}, fieldPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("")
			m.SetSize(100, 40)
			m.Update(runes("e"))
			m.submitting = true

			err := validate.CheckContact(tt.form)
			if err == nil {
				t.Fatal("form should be rejected")
			}
			m.Update(app.ContactResultMsg{Form: tt.form, Error: err})

			if !m.CapturingInput() {
				t.Error("Editing should continue after a rejection")
			}
			if m.focusedField != tt.field {
				t.Errorf("focusedField = %d, want %d", m.focusedField, tt.field)
			}

			var verr *validate.Error
			errors.As(err, &verr)
			if m.errMsg != verr.Message {
				t.Errorf("errMsg = %q, want %q", m.errMsg, verr.Message)
			}
			if !strings.Contains(m.View(), "Please") {
				t.Error("View should show the validation message")
			}
		})
	}
}

func TestModel_ErrorFieldRestoredOnEdit(t *testing.T) {
	m := New("")
	m.Update(app.ContactResultMsg{Error: &validate.Error{
		Reason:  validate.ReasonMalformedPhone,
		Field:   "phone",
		Message: "bad phone",
	}})
	m.Update(runes("e"))
	if m.focusedField != fieldPhone {
		t.Errorf("editing should resume at the failed field, got %d", m.focusedField)
	}
}

func TestModel_PlainError(t *testing.T) {
	m := New("")
	m.Update(app.ContactResultMsg{Error: errors.New("unavailable")})
	if m.errMsg != "unavailable" {
		t.Errorf("errMsg = %q", m.errMsg)
	}
}

func TestModel_FieldNavigation(t *testing.T) {
	m := New("")
	m.Update(runes("e"))

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focusedField != fieldSubmit {
		t.Errorf("shift+tab from name = %d, want submit", m.focusedField)
	}

	m.Update(runes("z"))
	if m.Form() != (validate.ContactForm{}) {
		t.Error("Typing on the submit button should not change fields")
	}

	if _, cmd := m.Update(enter); cmd == nil {
		t.Error("enter on the submit button should submit")
	}
}

func TestModel_Help(t *testing.T) {
	m := New("")
	if len(m.ShortHelp()) != 1 {
		t.Errorf("ShortHelp = %d", len(m.ShortHelp()))
	}
	m.Update(runes("e"))
	if len(m.ShortHelp()) != 3 {
		t.Errorf("editing ShortHelp = %d", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 2 {
		t.Errorf("FullHelp = %d", len(m.FullHelp()))
	}
}
