// Package gradebook holds graded assignment entries and keeps running
// averages per subject and across the whole book.
package gradebook

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an entry id is not in the book.
	ErrNotFound = errors.New("entry not found")

	// ErrInvalidSnapshot is returned when Restore receives inconsistent data.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Entry is one graded assignment.
type Entry struct {
	ID         int    `json:"id"`
	Subject    string `json:"subject"`
	Assignment string `json:"assignment"`
	Score      int    `json:"score"`
}

// SubjectAverage is the derived average for one subject.
type SubjectAverage struct {
	Subject string  `json:"subject"`
	Count   int     `json:"count"`
	Sum     int     `json:"sum"`
	Average float64 `json:"average"`
}

type subjectAggregate struct {
	count int
	sum   int
}

// Book is the entry store for a single session. It is not safe for
// concurrent use; callers serialize access.
type Book struct {
	nextID      int
	entries     map[int]Entry
	subjects    map[string]*subjectAggregate
	order       []string
	combinedSum int
	overall     float64
	averages    []SubjectAverage
}

// New returns an empty book.
func New() *Book {
	return &Book{
		entries:  make(map[int]Entry),
		subjects: make(map[string]*subjectAggregate),
		overall:  math.NaN(),
	}
}

// AddEntry stores a new entry under the next sequential id and updates all
// aggregates. Input is stored as given.
func (b *Book) AddEntry(subject, assignment string, score int) Entry {
	entry := Entry{
		ID:         b.nextID,
		Subject:    subject,
		Assignment: assignment,
		Score:      score,
	}
	b.nextID++

	b.entries[entry.ID] = entry
	b.combinedSum += score
	b.addToSubject(subject, score)
	b.recalculate()

	return entry
}

// DeleteEntry removes the entry with the given id.
func (b *Book) DeleteEntry(id int) error {
	entry, ok := b.entries[id]
	if !ok {
		return fmt.Errorf("delete entry %d: %w", id, ErrNotFound)
	}

	b.combinedSum -= entry.Score
	b.removeFromSubject(entry.Subject, entry.Score)
	delete(b.entries, id)
	b.recalculate()

	return nil
}

// OverallAverage returns the rounded mean score of all entries, or NaN when
// the book is empty.
func (b *Book) OverallAverage() float64 {
	return b.overall
}

// SubjectAverages returns the unrounded average per subject in the order
// subjects were first added.
func (b *Book) SubjectAverages() []SubjectAverage {
	out := make([]SubjectAverage, len(b.averages))
	copy(out, b.averages)
	return out
}

// Entry returns a single entry by id.
func (b *Book) Entry(id int) (Entry, bool) {
	e, ok := b.entries[id]
	return e, ok
}

// Entries returns all entries sorted by id.
func (b *Book) Entries() []Entry {
	out := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of entries.
func (b *Book) Len() int {
	return len(b.entries)
}

// NextID returns the id the next added entry will receive.
func (b *Book) NextID() int {
	return b.nextID
}

// Sum returns the combined score of all entries.
func (b *Book) Sum() int {
	return b.combinedSum
}

// Clone returns a deep copy of the book, including subject order and the id
// counter.
func (b *Book) Clone() *Book {
	c := &Book{
		nextID:      b.nextID,
		entries:     maps.Clone(b.entries),
		subjects:    make(map[string]*subjectAggregate, len(b.subjects)),
		order:       append([]string(nil), b.order...),
		combinedSum: b.combinedSum,
		overall:     b.overall,
		averages:    append([]SubjectAverage(nil), b.averages...),
	}
	for subject, agg := range b.subjects {
		copied := *agg
		c.subjects[subject] = &copied
	}
	return c
}

// Restore replaces the book contents with entries and rebuilds every
// aggregate. Subjects are ordered by the lowest id that mentions them.
// Subject and assignment are trimmed and lowercased; empty fields and
// negative scores are rejected.
func (b *Book) Restore(entries []Entry, nextID int) error {
	sorted := make([]Entry, len(entries))
	for i, e := range entries {
		e.Subject = strings.ToLower(strings.TrimSpace(e.Subject))
		e.Assignment = strings.ToLower(strings.TrimSpace(e.Assignment))
		sorted[i] = e
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	seen := make(map[int]struct{}, len(sorted))
	for _, e := range sorted {
		if e.Subject == "" || e.Assignment == "" {
			return fmt.Errorf("%w: entry %d has an empty field", ErrInvalidSnapshot, e.ID)
		}
		if e.Score < 0 {
			return fmt.Errorf("%w: entry %d has negative score %d", ErrInvalidSnapshot, e.ID, e.Score)
		}
		if e.ID < 0 {
			return fmt.Errorf("%w: negative id %d", ErrInvalidSnapshot, e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidSnapshot, e.ID)
		}
		if e.ID >= nextID {
			return fmt.Errorf("%w: id %d not below next id %d", ErrInvalidSnapshot, e.ID, nextID)
		}
		seen[e.ID] = struct{}{}
	}

	b.nextID = nextID
	b.entries = make(map[int]Entry, len(sorted))
	b.subjects = make(map[string]*subjectAggregate)
	b.order = nil
	b.combinedSum = 0

	for _, e := range sorted {
		b.entries[e.ID] = e
		b.combinedSum += e.Score
		b.addToSubject(e.Subject, e.Score)
	}
	b.recalculate()

	return nil
}

func (b *Book) addToSubject(subject string, score int) {
	if agg, ok := b.subjects[subject]; ok {
		agg.count++
		agg.sum += score
		return
	}
	b.subjects[subject] = &subjectAggregate{count: 1, sum: score}
	b.order = append(b.order, subject)
}

func (b *Book) removeFromSubject(subject string, score int) {
	agg, ok := b.subjects[subject]
	if !ok {
		return
	}
	agg.sum -= score
	agg.count--

	if agg.count == 0 {
		delete(b.subjects, subject)
		for i, s := range b.order {
			if s == subject {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// recalculate refreshes the overall average and the subject averages.
func (b *Book) recalculate() {
	if len(b.entries) == 0 {
		b.overall = math.NaN()
	} else {
		b.overall = math.Round(float64(b.combinedSum) / float64(len(b.entries)))
	}

	b.averages = b.averages[:0]
	for _, subject := range b.order {
		agg := b.subjects[subject]
		b.averages = append(b.averages, SubjectAverage{
			Subject: subject,
			Count:   agg.count,
			Sum:     agg.sum,
			Average: float64(agg.sum) / float64(agg.count),
		})
	}
}
