// Package history provides the history tab for viewing recorded grade changes.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/gradebook-tui/internal/app"
	"github.com/j-veylop/gradebook-tui/internal/models"
)

const (
	trendLimit   = 60
	eventLimit   = 15
	sessionLimit = 5
)

// Source provides the history queries rendered by the tab.
type Source interface {
	AverageTrend(limit int) ([]models.TrendPoint, error)
	EventsInRange(tr models.TimeRange, limit int) ([]models.GradeEvent, error)
	SubjectActivity(tr models.TimeRange) ([]models.SubjectActivity, error)
	SessionSummaries(limit int) ([]models.SessionSummary, error)
	Threshold() float64
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
// Refresh is global, the app forwards it as app.RefreshMsg.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

type historyData struct {
	trend    []models.TrendPoint
	events   []models.GradeEvent
	activity []models.SubjectActivity
	sessions []models.SessionSummary
}

func (d *historyData) hasData() bool {
	return d != nil && (len(d.trend) > 0 || len(d.events) > 0 || len(d.sessions) > 0)
}

// historyLoadedMsg is sent when history data is loaded.
type historyLoadedMsg struct {
	timeRange models.TimeRange
	data      *historyData
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	source   Source
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	timeRange   models.TimeRange
	historyData *historyData
	loading     bool
	// stale is set when the book changed during a load.
	stale       bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model. A nil source renders an error.
func New(state *app.State, source Source) *Model {
	return &Model{
		state:     state,
		source:    source,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRange7Days,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadHistoryCmd()
}

// loadHistoryCmd creates a command to load history data for the current
// time range.
func (m *Model) loadHistoryCmd() tea.Cmd {
	source := m.source
	tr := m.timeRange

	return func() tea.Msg {
		if source == nil {
			return historyErrorMsg{err: "History database not available"}
		}

		data := &historyData{}
		var err error

		if data.trend, err = source.AverageTrend(trendLimit); err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		if data.events, err = source.EventsInRange(tr, eventLimit); err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		if data.activity, err = source.SubjectActivity(tr); err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		if data.sessions, err = source.SessionSummaries(sessionLimit); err != nil {
			return historyErrorMsg{err: err.Error()}
		}

		return historyLoadedMsg{timeRange: tr, data: data}
	}
}

// reload starts a load unless one is running, in which case the result is
// marked stale and reloaded when it arrives.
func (m *Model) reload() tea.Cmd {
	if m.loading {
		m.stale = true
		return nil
	}
	m.loading = true
	return m.loadHistoryCmd()
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.timeRange != m.timeRange {
			return m, nil
		}
		m.historyData = msg.data
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""
		if m.stale {
			m.stale = false
			return m, m.reload()
		}

	case historyErrorMsg:
		m.loading = false
		m.stale = false
		m.errorMsg = msg.err
		return m, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		}

	case app.BookLoadedMsg, app.RefreshMsg:
		return m, m.reload()

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			return m, m.reload()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if key.Matches(msg, m.keys.ToggleRange) {
		m.timeRange = m.timeRange.Next()
		m.loading = true
		m.stale = false
		return m, m.loadHistoryCmd()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleRange}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down},
	}
}
