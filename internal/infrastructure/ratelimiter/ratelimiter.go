package ratelimiter

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultSourceKey = "X-RateLimit-Key"

type Limiter interface {
	// Allow consumes a token for sourceKey. When refused it returns how long
	// until the next token.
	Allow(sourceKey string) (bool, time.Duration)
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

type Config struct {
	MaxRatePerSecond int
	MaxBurst         int
	CacheTTL         time.Duration
	SourceHeaderKey  string
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per source. Idle buckets are evicted after
// CacheTTL.
type RateLimiter struct {
	limit           rate.Limit
	burst           int
	ttl             time.Duration
	sourceHeaderKey string

	mu       sync.Mutex
	visitors map[string]*visitor

	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

func New(cfg Config) *RateLimiter {
	if cfg.MaxRatePerSecond <= 0 {
		cfg.MaxRatePerSecond = 10
	}
	if cfg.MaxBurst <= 0 {
		cfg.MaxBurst = cfg.MaxRatePerSecond
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.SourceHeaderKey == "" {
		cfg.SourceHeaderKey = defaultSourceKey
	}

	rl := &RateLimiter{
		limit:           rate.Limit(cfg.MaxRatePerSecond),
		burst:           cfg.MaxBurst,
		ttl:             cfg.CacheTTL,
		sourceHeaderKey: cfg.SourceHeaderKey,
		visitors:        make(map[string]*visitor),
		cleanupTick:     time.NewTicker(cfg.CacheTTL),
		done:            make(chan struct{}),
	}
	go rl.startCleanup()

	return rl
}

func (rl *RateLimiter) get(sourceKey string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[sourceKey]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[sourceKey] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (rl *RateLimiter) Allow(sourceKey string) (bool, time.Duration) {
	now := time.Now()
	limiter := rl.get(sourceKey, now)

	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}

	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}

	r.CancelAt(now)
	return false, delay
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	tokens := rl.get(sourceKey, time.Now()).Tokens()
	if tokens < 0 {
		return 0
	}
	return int(math.Floor(tokens))
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.burst
}

// GetSourceKey uses the configured header (first hop of a forwarded list)
// and falls back to the remote address.
func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if v := r.Header.Get(rl.sourceHeaderKey); v != "" {
		first, _, _ := strings.Cut(v, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) startCleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanup(time.Now())
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.cleanupTick.Stop()
	})
}
