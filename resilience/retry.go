package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts counts the first call. Values below 1 mean 3.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// Jitter spreads each delay uniformly over [d/2, d).
	Jitter bool
	// RetryIf decides whether an error is worth another attempt. Nil retries
	// every error.
	RetryIf func(error) bool
	// OnRetry is called before sleeping, with the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryConfig returns three attempts starting at 100ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2,
		Jitter:         true,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = 2
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	return c
}

// Backoff returns the delay after the given failed attempt, counting from 1.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	c = c.normalized()
	d := float64(c.InitialBackoff) * math.Pow(c.BackoffFactor, float64(attempt-1))
	d = math.Min(d, float64(c.MaxBackoff))
	if c.Jitter && d > 0 {
		d = d/2 + rand.Float64()*d/2
	}
	return time.Duration(d)
}

// Retry calls fn until it succeeds, RetryIf rejects the error, attempts run
// out, or ctx is done. The result and error of the last attempt are
// returned; a cancelled wait returns ctx.Err() instead.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	cfg = cfg.normalized()

	var (
		res T
		err error
	)
	for attempt := 1; ; attempt++ {
		res, err = fn()
		if err == nil || attempt >= cfg.MaxAttempts {
			return res, err
		}
		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return res, err
		}

		delay := cfg.Backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		if delay <= 0 {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			continue
		}
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return res, ctx.Err()
		}
	}
}

// RetryFunc is Retry for operations without a result.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Retry(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
