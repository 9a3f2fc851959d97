package resilience

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// ErrRateLimited is returned by Execute when no token is available.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig configures a token bucket.
type RateLimiterConfig struct {
	Name string
	// Rate is the number of tokens added per second.
	Rate float64
	// Burst is the bucket capacity. Defaults to ceil(Rate).
	Burst int
}

// RateLimiter is a token bucket refilled lazily on each call.
type RateLimiter struct {
	name  string
	rate  float64
	burst float64
	now   func() time.Time

	mu     sync.Mutex
	tokens float64
	stamp  time.Time
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(math.Ceil(cfg.Rate))
	}
	rl := &RateLimiter{
		name:  cfg.Name,
		rate:  cfg.Rate,
		burst: float64(cfg.Burst),
		now:   time.Now,
	}
	rl.tokens = rl.burst
	rl.stamp = rl.now()
	return rl
}

// Name returns the configured name.
func (rl *RateLimiter) Name() string { return rl.name }

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN takes n tokens if all are available.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens < float64(n) {
		return false
	}
	rl.tokens -= float64(n)
	return true
}

// Tokens returns the tokens currently in the bucket.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// Wait blocks until a token is taken or ctx is done. A token reserved by a
// cancelled wait is returned to the bucket.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	delay := rl.reserve()
	if delay == 0 {
		return nil
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		rl.mu.Lock()
		rl.tokens = math.Min(rl.tokens+1, rl.burst)
		rl.mu.Unlock()
		return ctx.Err()
	}
}

// Execute runs fn if a token is available and returns ErrRateLimited
// otherwise.
func (rl *RateLimiter) Execute(fn func() error) error {
	if !rl.Allow() {
		return ErrRateLimited
	}
	return fn()
}

// ExecuteWait waits for a token, then runs fn.
func (rl *RateLimiter) ExecuteWait(ctx context.Context, fn func() error) error {
	if err := rl.Wait(ctx); err != nil {
		return err
	}
	return fn()
}

// reserve takes a token, letting the bucket go negative, and returns how
// long the caller must wait before using it.
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	rl.tokens--
	if rl.tokens >= 0 {
		return 0
	}
	return time.Duration(-rl.tokens / rl.rate * float64(time.Second))
}

func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.stamp).Seconds()
	rl.stamp = now
	if elapsed > 0 {
		rl.tokens = math.Min(rl.tokens+elapsed*rl.rate, rl.burst)
	}
}
