package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockAdvance(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(start)

	assert.Equal(t, start, c.Now())
	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())
}

func TestClockSleepRecordsAndAdvances(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(start)

	c.Sleep(20 * time.Second)
	c.Sleep(0)
	c.Sleep(5 * time.Second)

	assert.Equal(t, start.Add(25*time.Second), c.Now())
	assert.Equal(t, []time.Duration{20 * time.Second, 0, 5 * time.Second}, c.Sleeps())
}

func TestClockReset(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(start)
	c.Sleep(time.Minute)

	c.Reset(start)
	assert.Equal(t, start, c.Now())
	assert.Empty(t, c.Sleeps())
}
