package bot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manual clock for deterministic TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSessions_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(10*time.Minute, clock.Now)

	s.Set("u1", []string{"a", "b", "c"})

	for i, want := range []string{"a", "b", "c"} {
		got, ok := s.Get("u1", i+1)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := s.Get("u1", 0)
	assert.False(t, ok)
	_, ok = s.Get("u1", 4)
	assert.False(t, ok)
	_, ok = s.Get("someone-else", 1)
	assert.False(t, ok)
}

func TestSessions_OverwriteReplacesWholeList(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(10*time.Minute, clock.Now)

	s.Set("u1", []string{"a", "b", "c"})
	s.Set("u1", []string{"x"})

	got, ok := s.Get("u1", 1)
	require.True(t, ok)
	assert.Equal(t, "x", got)

	_, ok = s.Get("u1", 2)
	assert.False(t, ok, "old entries must not survive an overwrite")
}

func TestSessions_EmptySetClearsReferences(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(10*time.Minute, clock.Now)

	s.Set("u1", []string{"a"})
	s.Set("u1", nil)

	_, ok := s.Get("u1", 1)
	assert.False(t, ok)
}

func TestSessions_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(10*time.Minute, clock.Now)

	s.Set("u1", []string{"a"})

	clock.Advance(10 * time.Minute)
	_, ok := s.Get("u1", 1)
	assert.True(t, ok, "exactly at the TTL boundary the session is still live")

	clock.Advance(time.Second)
	_, ok = s.Get("u1", 1)
	assert.False(t, ok, "expired without any explicit clear")
}

func TestSessions_TTLMeasuredFromLastSet(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(10*time.Minute, clock.Now)

	s.Set("u1", []string{"a"})
	clock.Advance(9 * time.Minute)

	// a read does not refresh the TTL
	_, ok := s.Get("u1", 1)
	require.True(t, ok)
	clock.Advance(2 * time.Minute)
	_, ok = s.Get("u1", 1)
	assert.False(t, ok)

	// a fresh Set does
	s.Set("u1", []string{"b"})
	clock.Advance(9 * time.Minute)
	_, ok = s.Get("u1", 1)
	assert.True(t, ok)
}

func TestSessions_SweepRemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(10*time.Minute, clock.Now)

	s.Set("old", []string{"a"})
	clock.Advance(8 * time.Minute)
	s.Set("fresh", []string{"b"})
	clock.Advance(3 * time.Minute)

	assert.Equal(t, 2, s.Len())
	s.Sweep()
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("fresh", 1)
	assert.True(t, ok)
	_, ok = s.Get("old", 1)
	assert.False(t, ok)
}

func TestSessions_SetCopiesInput(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(10*time.Minute, clock.Now)

	ids := []string{"a", "b"}
	s.Set("u1", ids)
	ids[0] = "mutated"

	got, ok := s.Get("u1", 1)
	require.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestSessions_ConcurrentAccess(t *testing.T) {
	s := NewSessions(10*time.Minute, time.Now)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", n%4)
			for j := 0; j < 500; j++ {
				s.Set(user, []string{"a", "b", "c"})
				if id, ok := s.Get(user, 2); ok {
					// whole-list replace: an index must never see a mix
					assert.Equal(t, "b", id)
				}
				s.Sweep()
			}
		}(i)
	}
	wg.Wait()
}
