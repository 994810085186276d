package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarthJahus/telegram-fraud-network/internal/record"
)

func entry(n int) record.StatusEntry {
	return record.StatusEntry{
		Status: record.StatusUnknown,
		Time:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour),
		Reason: fmt.Sprintf("e%d", n),
	}
}

func TestAppendToEmptyHistory(t *testing.T) {
	m := NewManager(10)
	rec := &record.EntityRecord{}

	m.Append(rec, entry(1))

	require.Len(t, rec.History, 1)
	assert.Equal(t, "e1", rec.History[0].Reason)
	assert.True(t, rec.Dirty())
}

func TestAppendPrependsNewest(t *testing.T) {
	m := NewManager(10)
	rec := &record.EntityRecord{}

	m.Append(rec, entry(1))
	m.Append(rec, entry(2))

	require.Len(t, rec.History, 2)
	assert.Equal(t, "e2", rec.History[0].Reason)
	assert.Equal(t, "e1", rec.History[1].Reason)
}

func TestAppendEvictsMiddleAtCap(t *testing.T) {
	m := NewManager(10)
	rec := &record.EntityRecord{}

	// Fill to the cap: newest first is e10..e1.
	for n := 1; n <= 10; n++ {
		m.Append(rec, entry(n))
	}
	require.Len(t, rec.History, 10)

	m.Append(rec, entry(11))

	require.Len(t, rec.History, 10)
	// The newest entry landed in front and the oldest survived.
	assert.Equal(t, "e11", rec.History[0].Reason)
	assert.Equal(t, "e1", rec.History[9].Reason)

	// The middle of the pre-append history (index 5 of e10..e1, which
	// is e5) was the one evicted.
	var reasons []string
	for _, e := range rec.History {
		reasons = append(reasons, e.Reason)
	}
	assert.NotContains(t, reasons, "e5")
	assert.Equal(t, []string{"e11", "e10", "e9", "e8", "e7", "e6", "e4", "e3", "e2", "e1"}, reasons)
}

func TestAppendDoesNotDeduplicate(t *testing.T) {
	m := NewManager(10)
	rec := &record.EntityRecord{}

	m.Append(rec, entry(1))
	m.Append(rec, entry(1))

	assert.Len(t, rec.History, 2)
}

func TestAppendReevictsAfterCapShrank(t *testing.T) {
	big := NewManager(10)
	rec := &record.EntityRecord{}
	for n := 1; n <= 10; n++ {
		big.Append(rec, entry(n))
	}

	small := NewManager(4)
	small.Append(rec, entry(11))

	assert.Len(t, rec.History, 4)
	assert.Equal(t, "e11", rec.History[0].Reason)
	assert.Equal(t, "e1", rec.History[len(rec.History)-1].Reason)
}

func TestZeroCapFallsBackToDefault(t *testing.T) {
	m := NewManager(0)
	assert.Equal(t, DefaultCap, m.Cap())
}
