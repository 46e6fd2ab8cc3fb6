package ratelimiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowBurstThenRefuse(t *testing.T) {
	t.Parallel()

	rl := New(Config{MaxRatePerSecond: 1, MaxBurst: 3, CacheTTL: time.Minute})
	t.Cleanup(rl.Close)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		require.True(t, ok, "request %d", i)
	}

	ok, retryAfter := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))

	// other sources have their own bucket
	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok)
}

func TestRefusedRequestDoesNotConsume(t *testing.T) {
	t.Parallel()

	rl := New(Config{MaxRatePerSecond: 1, MaxBurst: 1, CacheTTL: time.Minute})
	t.Cleanup(rl.Close)

	ok, _ := rl.Allow("k")
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		ok, _ = rl.Allow("k")
		require.False(t, ok)
	}
	assert.Equal(t, 0, rl.Remaining("k"))
}

func TestCleanupEvictsIdle(t *testing.T) {
	t.Parallel()

	rl := New(Config{MaxRatePerSecond: 1, MaxBurst: 1, CacheTTL: time.Minute})
	t.Cleanup(rl.Close)

	rl.Allow("k")
	rl.cleanup(time.Now().Add(2 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.visitors)
}

func TestGetSourceKey(t *testing.T) {
	t.Parallel()

	rl := New(Config{SourceHeaderKey: "X-Forwarded-For"})
	t.Cleanup(rl.Close)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", rl.GetSourceKey(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", rl.GetSourceKey(r))
}
