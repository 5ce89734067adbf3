package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock — управляемые часы для лимитера.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(max int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := New(max, window)
	l.now = clock.Now
	return l, clock
}

func TestCheck_WindowBoundary(t *testing.T) {
	l, _ := newTestLimiter(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		res := l.Check("client")
		require.True(t, res.Allowed, "request %d", i+1)
		require.Equal(t, 5, res.Limit)
		require.Equal(t, 5-(i+1), res.Remaining)
	}

	res := l.Check("client")
	require.False(t, res.Allowed)
	require.Equal(t, 0, res.Remaining)
	require.Greater(t, res.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, res.RetryAfter, 15*time.Minute)
}

// Истечение окна заменяет запись свежим окном: лимит полностью восстановлен.
func TestCheck_WindowRollover(t *testing.T) {
	l, clock := newTestLimiter(2, 15*time.Minute)

	require.True(t, l.Check("client").Allowed)
	require.True(t, l.Check("client").Allowed)
	require.False(t, l.Check("client").Allowed)

	clock.Advance(15*time.Minute + time.Second)

	res := l.Check("client")
	require.True(t, res.Allowed)
	require.Equal(t, 1, res.Remaining)
	require.Equal(t, clock.Now().Add(15*time.Minute), res.ResetAt)
}

// Клиенты учитываются независимо.
func TestCheck_PerClient(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.True(t, l.Check("a").Allowed)
	require.False(t, l.Check("a").Allowed)
	require.True(t, l.Check("b").Allowed)
}

// Отказы не продлевают окно: после resetAt клиент снова допущен.
func TestCheck_RejectionsDoNotExtendWindow(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	require.True(t, l.Check("client").Allowed)
	for i := 0; i < 10; i++ {
		require.False(t, l.Check("client").Allowed)
	}

	clock.Advance(time.Minute + time.Second)
	require.True(t, l.Check("client").Allowed)
}

func TestSweep(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)

	l.Check("a")
	l.Check("b")
	require.Equal(t, 2, l.Len())

	l.Sweep(clock.Now())
	require.Equal(t, 2, l.Len())

	l.Sweep(clock.Now().Add(2 * time.Minute))
	require.Equal(t, 0, l.Len())
}

func TestClientKey(t *testing.T) {
	t.Run("forwarded first element", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		require.Equal(t, "203.0.113.7", ClientKey(r))
	})

	t.Run("forwarded with spaces", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "  203.0.113.7 , 10.0.0.1")
		require.Equal(t, "203.0.113.7", ClientKey(r))
	})

	t.Run("remote addr host", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.5:4321"
		require.Equal(t, "192.0.2.5", ClientKey(r))
	})

	t.Run("fallback loopback", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "garbage"
		require.Equal(t, "127.0.0.1", ClientKey(r))
	})
}
