// Package roster persists gradebook entries to a JSON file and watches it for
// external edits.
package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/j-veylop/gradebook-tui/internal/gradebook"
	"github.com/j-veylop/gradebook-tui/internal/logger"
)

// CurrentVersion is the roster file format version written by Save.
const CurrentVersion = 1

const debounceInterval = 100 * time.Millisecond

// ErrUnsupportedVersion is returned for roster files newer than this build.
var ErrUnsupportedVersion = errors.New("unsupported roster version")

// File represents the JSON structure of a roster file.
type File struct {
	Entries []gradebook.Entry `json:"entries"`
	Version int               `json:"version"`
	NextID  int               `json:"nextId"`
}

// EventType defines the type of roster event.
type EventType int

const (
	// EventRosterLoaded is sent once after the initial load.
	EventRosterLoaded EventType = iota
	// EventRosterChanged is sent when the file was edited by someone else.
	EventRosterChanged
	// EventError reports a watcher or parse failure.
	EventError
)

// Event represents a roster store event.
type Event struct {
	Error  error
	Roster *File
	Type   EventType
}

// Store reads and writes one roster file and reports external changes.
type Store struct {
	mu            sync.Mutex
	filePath      string
	lastWritten   []byte
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// New opens the roster at filePath, creating an empty one if it does not
// exist, and starts watching it.
func New(filePath string) (*Store, error) {
	if filePath == "" {
		return nil, errors.New("roster path is empty")
	}

	s := &Store{
		filePath:  filePath,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create roster directory: %w", err)
	}

	roster, err := ReadFile(filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load roster: %w", err)
		}
		roster = &File{Version: CurrentVersion}
		if err := s.Save(nil, 0); err != nil {
			return nil, fmt.Errorf("failed to create roster file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventRosterLoaded, Roster: roster})
	return s, nil
}

// Path returns the roster file path.
func (s *Store) Path() string {
	return s.filePath
}

// Events returns the event channel for subscribing to roster changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// Load reads the roster file.
func (s *Store) Load() (*File, error) {
	return ReadFile(s.filePath)
}

// Save writes entries atomically. The write is remembered so the watcher
// does not report it back as an external change.
func (s *Store) Save(entries []gradebook.Entry, nextID int) error {
	if entries == nil {
		entries = []gradebook.Entry{}
	}

	data, err := json.MarshalIndent(File{
		Version: CurrentVersion,
		NextID:  nextID,
		Entries: entries,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.lastWritten = data
	return nil
}

// ReadFile reads and parses a roster file without watching it.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes roster data. Besides the versioned object format it accepts
// a bare array of entries, in which case the next id follows the highest id.
func Parse(data []byte) (*File, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &File{Version: CurrentVersion}, nil
	}

	if trimmed[0] == '[' {
		var entries []gradebook.Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse roster entries: %w", err)
		}
		return &File{Version: CurrentVersion, Entries: entries, NextID: nextIDFor(entries)}, nil
	}

	var f File
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	if f.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}
	if f.Version == 0 {
		f.Version = CurrentVersion
	}
	if floor := nextIDFor(f.Entries); f.NextID < floor {
		f.NextID = floor
	}

	return &f, nil
}

func nextIDFor(entries []gradebook.Entry) int {
	next := 0
	for _, e := range entries {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	return next
}

// startWatcher watches the parent directory, since atomic renames replace
// the file inode and would drop a watch on the file itself.
func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		_ = watcher.Close()
		return err
	}

	s.watcher = watcher
	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Store) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the roster after a change settled.
func (s *Store) handleFileChange() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.sendEvent(Event{Type: EventError, Error: err})
		}
		return
	}

	s.mu.Lock()
	own := bytes.Equal(data, s.lastWritten)
	s.mu.Unlock()
	if own {
		return
	}

	roster, err := Parse(data)
	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	logger.Debug("roster changed on disk", "path", s.filePath, "entries", len(roster.Entries))
	s.sendEvent(Event{Type: EventRosterChanged, Roster: roster})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
