package changelog

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(id string, at time.Time, kind Kind) Entry {
	return Entry{
		ID:    id,
		At:    at,
		Actor: "test",
		Kind:  kind,
		After: &Snapshot{Date: "2026-03-10", TemplateID: "day"},
	}
}

func TestLog_AppendAssignsMonotonicSeq(t *testing.T) {
	l := NewLog()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		e, err := l.Append(testEntry(fmt.Sprintf("e-%d", i), at, KindCreated))
		require.NoError(t, err)
		assert.Equal(t, int64(i), e.Seq)
	}
	assert.Equal(t, int64(5), l.LastSeq())
	assert.Equal(t, 5, l.Len())
}

func TestLog_AppendOverwritesCallerSeq(t *testing.T) {
	l := NewLog()
	in := testEntry("e-1", time.Now(), KindCreated)
	in.Seq = 999

	got, err := l.Append(in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Seq)
}

func TestLog_AppendRejectsInvalid(t *testing.T) {
	l := NewLog()

	_, err := l.Append(Entry{Kind: KindCreated})
	assert.Error(t, err, "missing id")

	_, err = l.Append(Entry{ID: "e-1", Kind: Kind("bogus")})
	assert.Error(t, err, "invalid kind")

	assert.Equal(t, 0, l.Len(), "failed appends write nothing")
}

func TestLoad_ResumesClockFromMaxSeq(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	persisted := []Entry{
		{ID: "e-3", Seq: 3, At: at, Kind: KindSwitched},
		{ID: "e-1", Seq: 1, At: at, Kind: KindCreated},
		{ID: "e-2", Seq: 2, At: at, Kind: KindCreated},
	}

	l := Load(persisted)
	require.Equal(t, int64(3), l.LastSeq())

	// Entries come back sorted regardless of input order.
	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "e-1", entries[0].ID)
	assert.Equal(t, "e-3", entries[2].ID)

	// The next append continues the sequence.
	e, err := l.Append(testEntry("e-4", at, KindDeleted))
	require.NoError(t, err)
	assert.Equal(t, int64(4), e.Seq)
}

func TestLog_Get(t *testing.T) {
	l := NewLog()
	at := time.Now()
	want, err := l.Append(testEntry("e-1", at, KindCreated))
	require.NoError(t, err)

	got, ok := l.Get(want.Seq)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = l.Get(42)
	assert.False(t, ok)
}

func TestLog_QueryHalfOpenRange(t *testing.T) {
	l := NewLog()
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := l.Append(testEntry(fmt.Sprintf("e-%d", i), base.AddDate(0, 0, i), KindCreated))
		require.NoError(t, err)
	}

	// [day1, day3) picks up day1 and day2 only.
	got := l.Query(nil, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.Len(t, got, 2)
	assert.Equal(t, "e-1", got[0].ID)
	assert.Equal(t, "e-2", got[1].ID)

	// Open bounds return everything.
	assert.Len(t, l.Query(nil, time.Time{}, time.Time{}), 4)
}

func TestLog_QueryPredicate(t *testing.T) {
	l := NewLog()
	at := time.Now()
	_, err := l.Append(testEntry("e-1", at, KindCreated))
	require.NoError(t, err)
	_, err = l.Append(testEntry("e-2", at, KindSwitched))
	require.NoError(t, err)
	_, err = l.Append(testEntry("e-3", at, KindSwitched))
	require.NoError(t, err)

	got := l.Query(func(e Entry) bool { return e.Kind == KindSwitched }, time.Time{}, time.Time{})
	require.Len(t, got, 2)
	assert.Equal(t, "e-2", got[0].ID)
}

func TestLog_PurgeOlderThan(t *testing.T) {
	l := NewLog()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := l.Append(testEntry(fmt.Sprintf("e-%d", i), base.AddDate(0, 0, i), KindCreated))
		require.NoError(t, err)
	}

	cutoff := base.AddDate(0, 0, 2)
	removed := l.PurgeOlderThan(cutoff)
	assert.Equal(t, 2, removed, "entries strictly before the cutoff go")
	assert.Equal(t, 3, l.Len())

	// An entry exactly at the cutoff survives.
	entries := l.Entries()
	assert.Equal(t, "e-2", entries[0].ID)

	// Idempotent: a second sweep with the same cutoff is a no-op.
	assert.Equal(t, 0, l.PurgeOlderThan(cutoff))
	assert.Equal(t, 3, l.Len())
}

func TestLog_PurgeNeverRewindsClock(t *testing.T) {
	l := NewLog()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := l.Append(testEntry(fmt.Sprintf("e-%d", i), at, KindCreated))
		require.NoError(t, err)
	}

	l.PurgeOlderThan(at.AddDate(0, 0, 1))
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, int64(3), l.LastSeq())

	e, err := l.Append(testEntry("e-next", time.Now(), KindCreated))
	require.NoError(t, err)
	assert.Equal(t, int64(4), e.Seq, "seq values are never reused after a purge")
}

func TestRetentionPolicy_Cutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, ok := Forever().Cutoff(now)
	assert.False(t, ok, "zero policy never purges")

	cutoff, ok := Days(30).Cutoff(now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -30), cutoff)
}

func TestEntry_Date(t *testing.T) {
	after := Entry{After: &Snapshot{Date: "2026-03-11"}, Before: &Snapshot{Date: "2026-03-10"}}
	assert.Equal(t, "2026-03-11", after.Date(), "after side wins")

	before := Entry{Before: &Snapshot{Date: "2026-03-10"}}
	assert.Equal(t, "2026-03-10", before.Date())

	assert.Equal(t, "", Entry{}.Date())
}

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())

	resumed := NewClockAt(41)
	assert.Equal(t, int64(42), resumed.Next())
}
