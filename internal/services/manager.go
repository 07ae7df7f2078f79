// Package services provides service orchestration for the TUI.
package services

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/j-veylop/gradebook-tui/internal/config"
	"github.com/j-veylop/gradebook-tui/internal/db"
	"github.com/j-veylop/gradebook-tui/internal/gradebook"
	"github.com/j-veylop/gradebook-tui/internal/logger"
	"github.com/j-veylop/gradebook-tui/internal/models"
	"github.com/j-veylop/gradebook-tui/internal/services/roster"
	"github.com/j-veylop/gradebook-tui/internal/validate"
)

type (
	// BookChangedEvent is emitted after every successful change to the book.
	BookChangedEvent struct {
		Snapshot Snapshot
		Cause    models.Action
	}

	// AlertEvent is emitted when the overall average drops below the
	// configured threshold.
	AlertEvent struct {
		Average   float64
		Threshold float64
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (BookChangedEvent) isServiceEvent() {}
func (AlertEvent) isServiceEvent()       {}
func (ErrorEvent) isServiceEvent()       {}

// Snapshot is a consistent copy of the book's state.
type Snapshot struct {
	Entries         []gradebook.Entry
	SubjectAverages []gradebook.SubjectAverage
	// OverallAverage is NaN when there are no entries.
	OverallAverage float64
	Sum            int
	NextID         int
}

// HasAverage reports whether the overall average should be shown.
func (s Snapshot) HasAverage() bool {
	return !math.IsNaN(s.OverallAverage)
}

// Notifier delivers a desktop notification.
type Notifier func(title, body string) error

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Manager owns the session's gradebook and is the only path that mutates it.
type Manager struct {
	mu          sync.RWMutex
	bookMu      sync.Mutex
	book        *gradebook.Book
	roster      *roster.Store
	database    *db.DB
	notify      Notifier
	sessionID   string
	threshold   float64
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	closeOnce   sync.Once
}

// NewManager creates a new service manager. The roster is optional: with an
// empty RosterPath the book lives in memory only.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		book:      gradebook.New(),
		notify:    desktopNotify,
		sessionID: uuid.New().String(),
		stopChan:  make(chan struct{}),
	}

	if cfg.AlertsEnabled() {
		m.threshold = cfg.AlertThreshold
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.RosterPath != "" {
		m.roster, err = roster.New(cfg.RosterPath)
		if err != nil {
			_ = m.database.Close()
			return nil, fmt.Errorf("failed to open roster: %w", err)
		}

		loaded, err := m.roster.Load()
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to load roster: %w", err)
		}
		if err := m.book.Restore(loaded.Entries, loaded.NextID); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to restore roster: %w", err)
		}

		go m.routeEvents()
	}

	logger.Info("session started",
		"session", m.sessionID,
		"roster", cfg.RosterPath,
		"entries", m.book.Len(),
	)

	return m, nil
}

// routeEvents applies external roster edits and forwards roster errors.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.roster.Events():
			m.handleRosterEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleRosterEvent(event roster.Event) {
	switch event.Type {
	case roster.EventRosterChanged:
		if err := m.applyRoster(event.Roster); err != nil {
			m.broadcast(ErrorEvent{Service: "roster", Error: err})
		}

	case roster.EventError:
		logger.Warn("roster watcher error", "error", event.Error)
		m.broadcast(ErrorEvent{Service: "roster", Error: event.Error})
	}
}

// applyRoster replaces the book with an externally edited roster.
func (m *Manager) applyRoster(r *roster.File) error {
	m.bookMu.Lock()
	prev := m.book.OverallAverage()
	if err := m.book.Restore(r.Entries, r.NextID); err != nil {
		m.bookMu.Unlock()
		return fmt.Errorf("failed to apply roster: %w", err)
	}
	snap := m.snapshotLocked()
	m.bookMu.Unlock()

	logger.Info("roster reloaded", "entries", len(snap.Entries))

	m.record(models.GradeEvent{Action: models.ActionReload, EntryID: -1}, snap)
	m.checkAlert(prev, snap.OverallAverage)
	m.broadcast(BookChangedEvent{Snapshot: snap, Cause: models.ActionReload})
	return nil
}

// AddGrade validates form and adds the resulting entry. Nothing changes when
// validation fails. If the roster cannot be written the book is left as it
// was, id counter and subject order included.
func (m *Manager) AddGrade(form validate.GradeForm) (gradebook.Entry, error) {
	grade, err := validate.ParseGrade(form)
	if err != nil {
		return gradebook.Entry{}, err
	}

	m.bookMu.Lock()
	backup := m.book.Clone()
	prev := m.book.OverallAverage()
	entry := m.book.AddEntry(grade.Subject, grade.Assignment, grade.Score)

	if err := m.persistLocked(); err != nil {
		m.book = backup
		m.bookMu.Unlock()
		return gradebook.Entry{}, err
	}
	snap := m.snapshotLocked()
	m.bookMu.Unlock()

	logger.Info("entry added",
		"id", entry.ID,
		"subject", entry.Subject,
		"assignment", entry.Assignment,
		"score", entry.Score,
	)

	m.record(models.GradeEvent{
		Action:     models.ActionAdd,
		EntryID:    entry.ID,
		Subject:    entry.Subject,
		Assignment: entry.Assignment,
		Score:      entry.Score,
	}, snap)
	m.checkAlert(prev, snap.OverallAverage)
	m.broadcast(BookChangedEvent{Snapshot: snap, Cause: models.ActionAdd})

	return entry, nil
}

// DeleteGrade removes the entry with id. It fails with gradebook.ErrNotFound
// for an unknown id. A failed roster write leaves the book unchanged.
func (m *Manager) DeleteGrade(id int) error {
	m.bookMu.Lock()
	backup := m.book.Clone()
	prev := m.book.OverallAverage()

	if err := m.book.DeleteEntry(id); err != nil {
		m.bookMu.Unlock()
		return err
	}
	entry, _ := backup.Entry(id)

	if err := m.persistLocked(); err != nil {
		m.book = backup
		m.bookMu.Unlock()
		return err
	}
	snap := m.snapshotLocked()
	m.bookMu.Unlock()

	logger.Info("entry deleted", "id", id, "subject", entry.Subject)

	m.record(models.GradeEvent{
		Action:     models.ActionDelete,
		EntryID:    entry.ID,
		Subject:    entry.Subject,
		Assignment: entry.Assignment,
		Score:      entry.Score,
	}, snap)
	m.checkAlert(prev, snap.OverallAverage)
	m.broadcast(BookChangedEvent{Snapshot: snap, Cause: models.ActionDelete})

	return nil
}

// SubmitContact validates the contact form. Accepted submissions are logged.
func (m *Manager) SubmitContact(form validate.ContactForm) error {
	if err := validate.CheckContact(form); err != nil {
		logger.Debug("contact rejected", "error", err)
		return err
	}

	logger.Info("contact submitted", "session", m.sessionID, "name", form.Name)
	return nil
}

// Snapshot returns a copy of the current book state.
func (m *Manager) Snapshot() Snapshot {
	m.bookMu.Lock()
	defer m.bookMu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Entries:         m.book.Entries(),
		SubjectAverages: m.book.SubjectAverages(),
		OverallAverage:  m.book.OverallAverage(),
		Sum:             m.book.Sum(),
		NextID:          m.book.NextID(),
	}
}

// persistLocked writes the book to the roster, if one is configured.
func (m *Manager) persistLocked() error {
	if m.roster == nil {
		return nil
	}
	if err := m.roster.Save(m.book.Entries(), m.book.NextID()); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	return nil
}

// record appends a history row. History is best effort and never fails the
// operation that produced it.
func (m *Manager) record(event models.GradeEvent, snap Snapshot) {
	event.SessionID = m.sessionID
	event.OverallAverage = snap.OverallAverage
	event.EntryCount = len(snap.Entries)

	if err := m.database.InsertGradeEvent(&event); err != nil {
		logger.Warn("failed to record grade event", "action", event.Action, "error", err)
		m.broadcast(ErrorEvent{Service: "history", Error: err})
	}
}

// checkAlert notifies when the average crosses the threshold downwards.
func (m *Manager) checkAlert(prev, current float64) {
	if m.threshold == 0 || math.IsNaN(prev) || math.IsNaN(current) {
		return
	}
	if !(prev >= m.threshold && current < m.threshold) {
		return
	}

	logger.Warn("overall average below threshold", "average", current, "threshold", m.threshold)

	title := "Grade Average Alert"
	body := fmt.Sprintf("Overall average dropped to %.0f (threshold %.0f)", current, m.threshold)
	if err := m.notify(title, body); err != nil {
		logger.Warn("failed to send desktop notification", "error", err)
	}

	m.broadcast(AlertEvent{Average: current, Threshold: m.threshold})
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// AverageTrend returns the overall averages recorded in this session.
func (m *Manager) AverageTrend(limit int) ([]models.TrendPoint, error) {
	return m.database.GetAverageTrend(m.sessionID, limit)
}

// RecentEvents returns the newest history rows across all sessions.
func (m *Manager) RecentEvents(limit int) ([]models.GradeEvent, error) {
	return m.database.GetRecentGradeEvents(limit)
}

// EventsInRange returns history rows within the time range, newest first.
func (m *Manager) EventsInRange(tr models.TimeRange, limit int) ([]models.GradeEvent, error) {
	return m.database.GetGradeEventsSince(tr.Since(time.Now()), limit)
}

// SubjectActivity returns per-subject history counts within the time range.
func (m *Manager) SubjectActivity(tr models.TimeRange) ([]models.SubjectActivity, error) {
	return m.database.GetSubjectActivity(tr.Since(time.Now()))
}

// SessionSummaries returns the most recent sessions.
func (m *Manager) SessionSummaries(limit int) ([]models.SessionSummary, error) {
	return m.database.GetSessionSummaries(limit)
}

// PruneHistory deletes history rows older than maxAge.
func (m *Manager) PruneHistory(maxAge time.Duration) (int64, error) {
	n, err := m.database.DeleteEventsBefore(time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	logger.Info("history pruned", "rows", n, "maxAge", maxAge)
	return n, nil
}

// SessionID returns the id stored with this session's history rows.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// RosterPath returns the roster file path, or "" for an in-memory session.
func (m *Manager) RosterPath() string {
	if m.roster == nil {
		return ""
	}
	return m.roster.Path()
}

// Threshold returns the alert threshold. Zero means alerts are off.
func (m *Manager) Threshold() float64 {
	return m.threshold
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.roster != nil {
			if err := m.roster.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		logger.Info("session closed", "session", m.sessionID)
	})

	return errors.Join(errs...)
}
