package gradebook

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyBook(t *testing.T) {
	b := New()

	assert.Equal(t, 0, b.Len())
	assert.True(t, math.IsNaN(b.OverallAverage()))
	assert.Empty(t, b.SubjectAverages())
	assert.Equal(t, 0, b.NextID())
}

func TestAddEntry_AssignsSequentialIDs(t *testing.T) {
	b := New()

	first := b.AddEntry("math", "hw1", 80)
	second := b.AddEntry("math", "hw2", 100)

	assert.Equal(t, 0, first.ID)
	assert.Equal(t, 1, second.ID)
	assert.Equal(t, 2, b.NextID())
	assert.Equal(t, 2, b.Len())
}

func TestAddEntry_SameSubject(t *testing.T) {
	b := New()
	b.AddEntry("math", "hw1", 80)
	b.AddEntry("math", "hw2", 100)

	averages := b.SubjectAverages()
	require.Len(t, averages, 1)
	assert.Equal(t, "math", averages[0].Subject)
	assert.Equal(t, 2, averages[0].Count)
	assert.Equal(t, 180, averages[0].Sum)
	assert.InDelta(t, 90.0, averages[0].Average, 1e-9)
	assert.Equal(t, 90.0, b.OverallAverage())
}

func TestAddEntry_TwoSubjects(t *testing.T) {
	b := New()
	b.AddEntry("math", "hw1", 80)
	b.AddEntry("science", "hw1", 70)

	assert.Equal(t, 75.0, b.OverallAverage())

	averages := b.SubjectAverages()
	require.Len(t, averages, 2)
	assert.Equal(t, "math", averages[0].Subject)
	assert.Equal(t, "science", averages[1].Subject)
}

func TestSubjectAverages_NotRounded(t *testing.T) {
	b := New()
	b.AddEntry("history", "quiz", 90)
	b.AddEntry("history", "quiz", 85)
	b.AddEntry("history", "quiz", 80)
	b.AddEntry("art", "sketch", 1)
	b.AddEntry("art", "sketch", 2)

	averages := b.SubjectAverages()
	require.Len(t, averages, 2)
	assert.InDelta(t, 85.0, averages[0].Average, 1e-9)
	assert.InDelta(t, 1.5, averages[1].Average, 1e-9)
}

func TestOverallAverage_RoundsHalfUp(t *testing.T) {
	b := New()
	b.AddEntry("a", "x", 1)
	b.AddEntry("a", "y", 2)

	// 3/2 = 1.5 rounds to 2
	assert.Equal(t, 2.0, b.OverallAverage())
}

func TestDeleteEntry(t *testing.T) {
	b := New()
	e := b.AddEntry("math", "hw1", 80)
	b.AddEntry("math", "hw2", 100)

	require.NoError(t, b.DeleteEntry(e.ID))

	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 100.0, b.OverallAverage())
	averages := b.SubjectAverages()
	require.Len(t, averages, 1)
	assert.Equal(t, 1, averages[0].Count)
	assert.Equal(t, 100, averages[0].Sum)
}

func TestDeleteEntry_RemovesEmptySubject(t *testing.T) {
	b := New()
	m := b.AddEntry("math", "hw1", 80)
	b.AddEntry("science", "lab", 70)

	require.NoError(t, b.DeleteEntry(m.ID))

	averages := b.SubjectAverages()
	require.Len(t, averages, 1)
	assert.Equal(t, "science", averages[0].Subject)
}

func TestDeleteEntry_LastEntryYieldsNaN(t *testing.T) {
	b := New()
	e := b.AddEntry("math", "hw1", 80)

	require.NoError(t, b.DeleteEntry(e.ID))

	assert.True(t, math.IsNaN(b.OverallAverage()))
	assert.Empty(t, b.SubjectAverages())
	assert.Equal(t, 0, b.Sum())
}

func TestDeleteEntry_NotFound(t *testing.T) {
	b := New()
	b.AddEntry("math", "hw1", 80)

	err := b.DeleteEntry(42)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 80.0, b.OverallAverage())
	assert.Equal(t, 80, b.Sum())
}

func TestDeleteEntry_Twice(t *testing.T) {
	b := New()
	e := b.AddEntry("math", "hw1", 80)

	require.NoError(t, b.DeleteEntry(e.ID))
	assert.ErrorIs(t, b.DeleteEntry(e.ID), ErrNotFound)
}

func TestAddDelete_RoundTrip(t *testing.T) {
	b := New()
	b.AddEntry("math", "hw1", 80)
	b.AddEntry("science", "lab", 65)

	beforeEntries := b.Entries()
	beforeAverages := b.SubjectAverages()
	beforeOverall := b.OverallAverage()

	for _, subject := range []string{"math", "english"} {
		e := b.AddEntry(subject, "extra", 12)
		require.NoError(t, b.DeleteEntry(e.ID))

		assert.Equal(t, beforeEntries, b.Entries())
		assert.Equal(t, beforeAverages, b.SubjectAverages())
		assert.Equal(t, beforeOverall, b.OverallAverage())
	}
}

func TestOverallAverage_MatchesRecomputation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	subjects := []string{"math", "science", "history", "art"}
	b := New()
	var live []int

	for i := 0; i < 500; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(live))
			require.NoError(t, b.DeleteEntry(live[idx]))
			live = append(live[:idx], live[idx+1:]...)
		} else {
			e := b.AddEntry(subjects[rng.Intn(len(subjects))], "a", rng.Intn(101))
			live = append(live, e.ID)
		}

		entries := b.Entries()
		if len(entries) == 0 {
			assert.True(t, math.IsNaN(b.OverallAverage()))
			continue
		}

		sum := 0
		perSubject := map[string][2]int{}
		for _, e := range entries {
			sum += e.Score
			agg := perSubject[e.Subject]
			perSubject[e.Subject] = [2]int{agg[0] + 1, agg[1] + e.Score}
		}
		assert.Equal(t, math.Round(float64(sum)/float64(len(entries))), b.OverallAverage())

		averages := b.SubjectAverages()
		assert.Len(t, averages, len(perSubject))
		for _, avg := range averages {
			want := perSubject[avg.Subject]
			assert.Equal(t, want[0], avg.Count, avg.Subject)
			assert.Equal(t, want[1], avg.Sum, avg.Subject)
		}
	}
}

func TestSubjectAverages_ReturnsCopy(t *testing.T) {
	b := New()
	b.AddEntry("math", "hw1", 80)

	averages := b.SubjectAverages()
	averages[0].Subject = "changed"

	assert.Equal(t, "math", b.SubjectAverages()[0].Subject)
}

func TestEntries_SortedByID(t *testing.T) {
	b := New()
	for i := 0; i < 10; i++ {
		b.AddEntry("s", "a", i)
	}
	require.NoError(t, b.DeleteEntry(3))

	entries := b.Entries()
	require.Len(t, entries, 9)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].ID, entries[i].ID)
	}

	e, ok := b.Entry(4)
	assert.True(t, ok)
	assert.Equal(t, 4, e.Score)

	_, ok = b.Entry(3)
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	b := New()
	b.AddEntry("old", "x", 1)

	err := b.Restore([]Entry{
		{ID: 5, Subject: "science", Assignment: "lab", Score: 70},
		{ID: 2, Subject: "math", Assignment: "hw1", Score: 80},
	}, 6)
	require.NoError(t, err)

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 6, b.NextID())
	assert.Equal(t, 75.0, b.OverallAverage())

	averages := b.SubjectAverages()
	require.Len(t, averages, 2)
	assert.Equal(t, "math", averages[0].Subject)
	assert.Equal(t, "science", averages[1].Subject)

	next := b.AddEntry("math", "hw2", 100)
	assert.Equal(t, 6, next.ID)
}

func TestRestore_Empty(t *testing.T) {
	b := New()
	b.AddEntry("math", "hw1", 80)

	require.NoError(t, b.Restore(nil, 3))

	assert.Equal(t, 0, b.Len())
	assert.True(t, math.IsNaN(b.OverallAverage()))
	assert.Equal(t, 3, b.NextID())
}

func TestRestore_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		nextID  int
	}{
		{
			name:    "duplicate id",
			entries: []Entry{{ID: 1, Subject: "a", Assignment: "x"}, {ID: 1, Subject: "b", Assignment: "y"}},
			nextID:  2,
		},
		{
			name:    "next id too low",
			entries: []Entry{{ID: 4, Subject: "a", Assignment: "x"}},
			nextID:  4,
		},
		{
			name:    "negative id",
			entries: []Entry{{ID: -1, Subject: "a", Assignment: "x"}},
			nextID:  0,
		},
		{
			name:    "negative score",
			entries: []Entry{{ID: 0, Subject: "a", Assignment: "x", Score: -5}},
			nextID:  1,
		},
		{
			name:    "empty subject",
			entries: []Entry{{ID: 0, Subject: "", Assignment: "x", Score: 5}},
			nextID:  1,
		},
		{
			name:    "blank assignment",
			entries: []Entry{{ID: 0, Subject: "a", Assignment: "  ", Score: 5}},
			nextID:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			b.AddEntry("keep", "me", 50)

			err := b.Restore(tt.entries, tt.nextID)
			require.ErrorIs(t, err, ErrInvalidSnapshot)

			assert.Equal(t, 1, b.Len())
			assert.Equal(t, 50.0, b.OverallAverage())
		})
	}
}

func TestRestore_NormalizesCase(t *testing.T) {
	b := New()
	err := b.Restore([]Entry{
		{ID: 0, Subject: "Math", Assignment: "HW 1", Score: 80},
		{ID: 1, Subject: " math", Assignment: "Quiz", Score: 60},
	}, 2)
	require.NoError(t, err)

	averages := b.SubjectAverages()
	require.Len(t, averages, 1)
	assert.Equal(t, SubjectAverage{Subject: "math", Count: 2, Sum: 140, Average: 70}, averages[0])

	e, ok := b.Entry(0)
	require.True(t, ok)
	assert.Equal(t, "hw 1", e.Assignment)
}

func TestClone_Independent(t *testing.T) {
	b := New()
	b.AddEntry("science", "lab", 70)
	b.AddEntry("math", "hw1", 90)
	b.AddEntry("science", "quiz", 50)
	require.NoError(t, b.DeleteEntry(0))

	c := b.Clone()
	b.AddEntry("art", "sketch", 10)
	require.NoError(t, b.DeleteEntry(2))

	assert.Equal(t, 3, c.NextID())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 140, c.Sum())
	assert.Equal(t, 70.0, c.OverallAverage())

	averages := c.SubjectAverages()
	require.Len(t, averages, 2)
	assert.Equal(t, "science", averages[0].Subject)
	assert.Equal(t, 1, averages[0].Count)
	assert.Equal(t, "math", averages[1].Subject)

	next := c.AddEntry("science", "essay", 30)
	assert.Equal(t, 3, next.ID)
	assert.Equal(t, 2, c.SubjectAverages()[0].Count)
}
