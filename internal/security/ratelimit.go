package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a request exceeds the rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitConfig holds configurable rate limits for the gateway's own
// HTTP surface (not to be confused with per-provider usage accounting).
type RateLimitConfig struct {
	AuthAttemptsPerMin     int `yaml:"auth_attempts_per_min" env:"AUTH_ATTEMPTS_PER_MIN"`
	GenerateRequestsPerMin int `yaml:"generate_requests_per_min" env:"GENERATE_REQUESTS_PER_MIN"`
}

// rateLimitConfigDefaults returns a config with sensible defaults.
func rateLimitConfigDefaults() RateLimitConfig {
	return RateLimitConfig{
		AuthAttemptsPerMin:     30,
		GenerateRequestsPerMin: 0, // 0 = unlimited
	}
}

// RateLimiter implements sliding window rate limiting using stdlib only.
// Each bucket tracks timestamps of recent events within its window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  RateLimitConfig
	now     func() time.Time
}

type bucket struct {
	window time.Duration
	limit  int
	events []time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
// Zero-value fields in cfg are replaced with defaults.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := rateLimitConfigDefaults()
	if cfg.AuthAttemptsPerMin <= 0 {
		cfg.AuthAttemptsPerMin = defaults.AuthAttemptsPerMin
	}

	rl := &RateLimiter{
		config: cfg,
		now:    time.Now,
		buckets: map[string]*bucket{
			"auth": {
				window: time.Minute,
				limit:  cfg.AuthAttemptsPerMin,
			},
		},
	}

	if cfg.GenerateRequestsPerMin > 0 {
		rl.buckets["generate"] = &bucket{
			window: time.Minute,
			limit:  cfg.GenerateRequestsPerMin,
		}
	}

	return rl
}

// Allow checks whether an event of the given kind is allowed.
// Returns nil if allowed, ErrRateLimited if the limit is exceeded.
// kind is typically "auth" or "generate".
func (rl *RateLimiter) Allow(kind string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[kind]
	if !ok {
		// Unknown kind = no limit configured.
		return nil
	}

	now := rl.now()
	b.evict(now)

	if len(b.events) >= b.limit {
		return ErrRateLimited
	}

	b.events = append(b.events, now)
	return nil
}

// evict removes events outside the sliding window.
func (b *bucket) evict(now time.Time) {
	cutoff := now.Add(-b.window)
	// Find the first event within the window (events are chronologically ordered).
	i := 0
	for i < len(b.events) && b.events[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.events = b.events[i:]
	}
}
