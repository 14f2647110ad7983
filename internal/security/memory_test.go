package security

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestMemoryStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	return NewMemoryStore(Policy{}, WithClock(clock.Now)), clock
}

func TestMemoryStore_LocksAfterFiveFailures(t *testing.T) {
	s, _ := newTestMemoryStore()
	ctx := context.Background()
	id := "user@example.com"

	for i := 0; i < DefaultMaxAttempts; i++ {
		res, err := s.CheckRateLimit(ctx, id)
		require.NoError(t, err)
		require.True(t, res.Allowed, "attempt %d", i+1)
		assert.Equal(t, DefaultMaxAttempts-i, res.RemainingAttempts)
		require.NoError(t, s.RecordFailure(ctx, id))
	}

	res, err := s.CheckRateLimit(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 15, res.LockoutMinutes)
}

func TestMemoryStore_LockoutMinutesRoundUp(t *testing.T) {
	s, clock := newTestMemoryStore()
	ctx := context.Background()
	id := "user@example.com"

	for i := 0; i < DefaultMaxAttempts; i++ {
		require.NoError(t, s.RecordFailure(ctx, id))
	}
	clock.Advance(10*time.Minute + 30*time.Second)

	res, err := s.CheckRateLimit(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 5, res.LockoutMinutes)
}

func TestMemoryStore_ResetClearsCounter(t *testing.T) {
	s, _ := newTestMemoryStore()
	ctx := context.Background()
	id := "user@example.com"

	for i := 0; i < DefaultMaxAttempts-1; i++ {
		require.NoError(t, s.RecordFailure(ctx, id))
	}
	require.NoError(t, s.Reset(ctx, id))
	require.NoError(t, s.RecordFailure(ctx, id))

	res, err := s.CheckRateLimit(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, DefaultMaxAttempts-1, res.RemainingAttempts)
}

func TestMemoryStore_WindowElapsedResets(t *testing.T) {
	s, clock := newTestMemoryStore()
	ctx := context.Background()
	id := "user@example.com"

	for i := 0; i < DefaultMaxAttempts; i++ {
		require.NoError(t, s.RecordFailure(ctx, id))
		clock.Advance(16 * time.Minute)
	}

	res, err := s.CheckRateLimit(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	other := "other@example.com"
	for i := 0; i < DefaultMaxAttempts; i++ {
		require.NoError(t, s.RecordFailure(ctx, other))
	}
	clock.Advance(15 * time.Minute)
	res, err = s.CheckRateLimit(ctx, other)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, DefaultMaxAttempts, res.RemainingAttempts)
}

func TestMemoryStore_IdentifiersAreIndependent(t *testing.T) {
	s, _ := newTestMemoryStore()
	ctx := context.Background()

	for i := 0; i < DefaultMaxAttempts; i++ {
		require.NoError(t, s.RecordFailure(ctx, "a@example.com"))
	}

	res, err := s.CheckRateLimit(ctx, "b@example.com")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryStore_Revoke(t *testing.T) {
	s, clock := newTestMemoryStore()
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "token-1", clock.Now().Add(time.Hour)))
	revoked, err = s.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Истёкшие записи вычищаются при следующем отзыве.
	clock.Advance(2 * time.Hour)
	require.NoError(t, s.Revoke(ctx, "token-2", clock.Now().Add(time.Hour)))
	revoked, err = s.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryStore_RevokeOutlivesTokenExpiry(t *testing.T) {
	s, clock := newTestMemoryStore()
	ctx := context.Background()
	exp := clock.Now().Add(time.Minute)

	require.NoError(t, s.Revoke(ctx, "token-1", exp))

	// Токен ещё проходит проверку срока с допуском, отзыв должен держаться.
	clock.Advance(time.Minute + 10*time.Second)
	require.NoError(t, s.Revoke(ctx, "token-2", clock.Now().Add(time.Hour)))
	revoked, err := s.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	clock.Advance(DefaultRevocationGrace)
	require.NoError(t, s.Revoke(ctx, "token-3", clock.Now().Add(time.Hour)))
	revoked, err = s.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryStore_ConcurrentFailures(t *testing.T) {
	s, _ := newTestMemoryStore()
	ctx := context.Background()
	id := "user@example.com"

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RecordFailure(ctx, id)
			_, _ = s.CheckRateLimit(ctx, id)
		}()
	}
	wg.Wait()

	s.mu.Lock()
	count := s.attempts[id].count
	s.mu.Unlock()
	assert.Equal(t, 100, count)
}
