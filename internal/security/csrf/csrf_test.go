package csrf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	return NewManager(store, ttl), store
}

func TestIssueValidate_OK(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	ctx := context.Background()

	token, cookie, err := m.Issue(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, cookie)
	require.NotEqual(t, token, cookie)

	require.NoError(t, m.Validate(ctx, cookie, token))

	// Пара валидна многократно до отзыва или истечения.
	require.NoError(t, m.Validate(ctx, cookie, token))
}

func TestIssue_Unique(t *testing.T) {
	m, store := newTestManager(time.Hour)
	ctx := context.Background()

	seen := map[string]struct{}{}
	for i := 0; i < 10; i++ {
		token, cookie, err := m.Issue(ctx)
		require.NoError(t, err)

		_, dupToken := seen[token]
		_, dupCookie := seen[cookie]
		require.False(t, dupToken)
		require.False(t, dupCookie)

		seen[token] = struct{}{}
		seen[cookie] = struct{}{}
	}

	require.Equal(t, 10, store.Len())
}

// Token одной пары не проходит с cookie другой: запись ищется по cookie,
// token сравнивается с хранимым.
func TestValidate_MismatchedPairs(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	ctx := context.Background()

	tokenA, cookieA, err := m.Issue(ctx)
	require.NoError(t, err)
	tokenB, cookieB, err := m.Issue(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, m.Validate(ctx, cookieA, tokenB), ErrTokenInvalid)
	require.ErrorIs(t, m.Validate(ctx, cookieB, tokenA), ErrTokenInvalid)

	require.NoError(t, m.Validate(ctx, cookieA, tokenA))
	require.NoError(t, m.Validate(ctx, cookieB, tokenB))
}

func TestValidate_MissingParts(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	ctx := context.Background()

	token, cookie, err := m.Issue(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, m.Validate(ctx, "", token), ErrTokenInvalid)
	require.ErrorIs(t, m.Validate(ctx, cookie, ""), ErrTokenInvalid)
	require.ErrorIs(t, m.Validate(ctx, "", ""), ErrTokenInvalid)
	require.ErrorIs(t, m.Validate(ctx, "unknown-cookie", token), ErrTokenInvalid)
}

func TestValidate_Expired(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	ctx := context.Background()

	token, cookie, err := m.Issue(ctx)
	require.NoError(t, err)

	// Сдвигаем часы менеджера за срок жизни записи.
	m.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

	require.ErrorIs(t, m.Validate(ctx, cookie, token), ErrTokenInvalid)
}

func TestRevoke(t *testing.T) {
	m, store := newTestManager(time.Hour)
	ctx := context.Background()

	token, cookie, err := m.Issue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, m.Revoke(ctx, cookie))
	require.Equal(t, 0, store.Len())

	require.ErrorIs(t, m.Validate(ctx, cookie, token), ErrTokenInvalid)

	// Повторный и пустой отзыв безвредны.
	require.NoError(t, m.Revoke(ctx, cookie))
	require.NoError(t, m.Revoke(ctx, ""))
}

// Issue выметает истекшие записи попутно.
func TestIssue_SweepsExpired(t *testing.T) {
	m, store := newTestManager(time.Hour)
	ctx := context.Background()

	_, _, err := m.Issue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	m.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

	_, _, err = m.Issue(ctx)
	require.NoError(t, err)

	// Старая запись выметена, осталась только свежая.
	require.Equal(t, 1, store.Len())
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Set(ctx, "live", &Entry{Token: "a", ExpiresAt: now.Add(time.Hour)}, time.Hour))
	require.NoError(t, store.Set(ctx, "dead", &Entry{Token: "b", ExpiresAt: now.Add(-time.Hour)}, time.Hour))
	require.Equal(t, 2, store.Len())

	require.NoError(t, store.Sweep(ctx, now))
	require.Equal(t, 1, store.Len())

	_, ok, err := store.Get(ctx, "live")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.Get(ctx, "dead")
	require.NoError(t, err)
	require.False(t, ok)
}
