package history

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gradebook-tui/internal/app"
	"github.com/j-veylop/gradebook-tui/internal/config"
	"github.com/j-veylop/gradebook-tui/internal/models"
	"github.com/j-veylop/gradebook-tui/internal/services"
	"github.com/j-veylop/gradebook-tui/internal/validate"
)

type fakeSource struct {
	trend     []models.TrendPoint
	events    []models.GradeEvent
	activity  []models.SubjectActivity
	sessions  []models.SessionSummary
	threshold float64
	err       error
	ranges    []models.TimeRange
}

func (f *fakeSource) AverageTrend(int) ([]models.TrendPoint, error) {
	return f.trend, f.err
}

func (f *fakeSource) EventsInRange(tr models.TimeRange, _ int) ([]models.GradeEvent, error) {
	f.ranges = append(f.ranges, tr)
	return f.events, nil
}

func (f *fakeSource) SubjectActivity(models.TimeRange) ([]models.SubjectActivity, error) {
	return f.activity, nil
}

func (f *fakeSource) SessionSummaries(int) ([]models.SessionSummary, error) {
	return f.sessions, nil
}

func (f *fakeSource) Threshold() float64 {
	return f.threshold
}

func populatedSource() *fakeSource {
	now := time.Now()
	return &fakeSource{
		trend: []models.TrendPoint{
			{Timestamp: now.Add(-time.Minute), Average: 90},
			{Timestamp: now, Average: 65},
		},
		events: []models.GradeEvent{
			{Timestamp: now, Action: models.ActionDelete, Subject: "Math", Assignment: "Quiz", Score: 40, OverallAverage: 65},
			{Timestamp: now, Action: models.ActionAdd, Subject: "Math", Assignment: "HW1", Score: 90, OverallAverage: 90},
			{Timestamp: now, Action: models.ActionReload, EntryCount: 3, OverallAverage: math.NaN()},
		},
		activity: []models.SubjectActivity{{Subject: "Math", Adds: 2, Deletes: 1, AvgScore: 65}},
		sessions: []models.SessionSummary{{
			StartedAt:   now.Add(-time.Hour),
			EndedAt:     now,
			SessionID:   "s1",
			Adds:        2,
			Deletes:     1,
			LastAverage: 65,
		}},
		threshold: 70,
	}
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := m.Update(cmd())
	return next
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.timeRange != models.TimeRange7Days {
		t.Errorf("default range = %v", m.timeRange)
	}
}

func TestModel_InitWithoutSource(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 24)

	next := run(t, m, m.Init())
	if m.errorMsg == "" {
		t.Error("A nil source should set an error")
	}
	if next == nil {
		t.Fatal("An error should produce a notification command")
	}
	if _, ok := next().(app.AddNotificationMsg); !ok {
		t.Errorf("error produced %T", next())
	}
	if !strings.Contains(m.View(), "Error:") {
		t.Error("View should show the error")
	}
}

func TestModel_LoadingView(t *testing.T) {
	m := New(app.NewState(), populatedSource())
	m.SetSize(80, 24)
	m.Init()
	if !strings.Contains(m.View(), "Loading history") {
		t.Error("View should show loading before the first result")
	}
}

func TestModel_EmptyHistory(t *testing.T) {
	m := New(app.NewState(), &fakeSource{})
	m.SetSize(80, 24)
	run(t, m, m.Init())

	if !strings.Contains(m.View(), "No history recorded yet") {
		t.Error("View should show the empty state")
	}
}

func TestModel_ViewWithData(t *testing.T) {
	m := New(app.NewState(), populatedSource())
	m.SetSize(120, 200)
	run(t, m, m.Init())

	view := m.View()
	for _, want := range []string{
		"Average This Session", "alert threshold", "Recent Changes",
		"Math / HW1", "reloaded 3 entries", "Activity by Subject", "Sessions", "last avg",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}
}

func TestModel_ToggleRange(t *testing.T) {
	src := populatedSource()
	m := New(app.NewState(), src)
	run(t, m, m.Init())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if m.timeRange != models.TimeRange30Days {
		t.Errorf("range after toggle = %v", m.timeRange)
	}
	run(t, m, cmd)

	if got := src.ranges[len(src.ranges)-1]; got != models.TimeRange30Days {
		t.Errorf("queried range = %v", got)
	}
	if m.loading {
		t.Error("loading should be cleared")
	}
}

func TestModel_StaleRangeIgnored(t *testing.T) {
	m := New(app.NewState(), populatedSource())
	m.Update(historyLoadedMsg{timeRange: models.TimeRangeAllTime, data: &historyData{}})
	if m.historyData != nil {
		t.Error("A result for another range should be ignored")
	}
}

func TestModel_ReloadTriggers(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want bool
	}{
		{"book loaded", app.BookLoadedMsg{}, true},
		{"refresh", app.RefreshMsg{Resource: "all"}, true},
		{"switch to history", app.TabSwitchMsg{Tab: app.TabHistory}, true},
		{"switch elsewhere", app.TabSwitchMsg{Tab: app.TabGradebook}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(app.NewState(), populatedSource())
			_, cmd := m.Update(tt.msg)
			if (cmd != nil) != tt.want {
				t.Errorf("reload = %v, want %v", cmd != nil, tt.want)
			}
		})
	}
}

func TestModel_ReloadWhileLoadingIsDeferred(t *testing.T) {
	m := New(app.NewState(), populatedSource())
	initCmd := m.Init()

	if _, cmd := m.Update(app.BookLoadedMsg{}); cmd != nil {
		t.Error("A reload during a load should be deferred")
	}

	next := run(t, m, initCmd)
	if next == nil {
		t.Fatal("A deferred reload should run after the load finishes")
	}
	if run(t, m, next) != nil {
		t.Error("The deferred reload should run once")
	}
}

func TestModel_SourceError(t *testing.T) {
	m := New(app.NewState(), &fakeSource{err: errors.New("db locked")})
	run(t, m, m.Init())
	if m.errorMsg != "db locked" {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) != 1 || len(m.FullHelp()) != 2 {
		t.Error("unexpected help bindings")
	}
}

func TestModel_WithManager(t *testing.T) {
	mgr, err := services.NewManager(&config.Config{
		DatabasePath:   filepath.Join(t.TempDir(), "history.db"),
		AlertThreshold: 70,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	if _, err := mgr.AddGrade(validate.GradeForm{Subject: "Math", Assignment: "HW1", Score: "90"}); err != nil {
		t.Fatalf("AddGrade failed: %v", err)
	}
	if _, err := mgr.AddGrade(validate.GradeForm{Subject: "Art", Assignment: "Sketch", Score: "70"}); err != nil {
		t.Fatalf("AddGrade failed: %v", err)
	}

	m := New(app.NewState(), mgr)
	m.SetSize(120, 200)
	run(t, m, m.Init())

	if got := len(m.historyData.trend); got != 2 {
		t.Errorf("trend points = %d, want 2", got)
	}
	if got := len(m.historyData.events); got != 2 {
		t.Errorf("events = %d, want 2", got)
	}

	view := m.View()
	if !strings.Contains(view, "Art / Sketch") {
		t.Error("View should list the recorded grades")
	}
}
