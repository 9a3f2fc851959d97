package process

import (
	"context"
	"errors"

	goerrors "github.com/kbukum/procpipe/errors"
	"github.com/kbukum/procpipe/logger"
	"github.com/kbukum/procpipe/observability"
	"github.com/kbukum/procpipe/resilience"
)

// RunnerConfig selects the guards a Runner applies. Nil fields are skipped.
type RunnerConfig struct {
	RateLimiter    *resilience.RateLimiterConfig
	Bulkhead       *resilience.BulkheadConfig
	CircuitBreaker *resilience.CircuitBreakerConfig
	Retry          *resilience.RetryConfig
}

// Runner executes commands through persistent resilience state. Guards are
// applied outermost first: rate limiter, bulkhead, circuit breaker, retry.
// The breaker counts failed spawns and non-zero exits alike, so a program
// that keeps crashing trips it.
type Runner struct {
	cfg     RunnerConfig
	limiter *resilience.RateLimiter
	bulk    *resilience.Bulkhead
	breaker *resilience.CircuitBreaker

	backend Backend
	log     *logger.Logger
	metrics *observability.ProcessMetrics
}

// NewRunner creates a Runner. An empty config runs commands directly.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{cfg: cfg}
	if cfg.RateLimiter != nil {
		r.limiter = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	if cfg.Bulkhead != nil {
		r.bulk = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	if cfg.CircuitBreaker != nil {
		r.breaker = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	return r
}

func (r *Runner) WithBackend(b Backend) *Runner {
	r.backend = b
	return r
}

func (r *Runner) WithLogger(l *logger.Logger) *Runner {
	r.log = l
	return r
}

func (r *Runner) WithMetrics(m *observability.ProcessMetrics) *Runner {
	r.metrics = m
	return r
}

// Run executes cmd through the configured guards.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	call := func() (*Result, error) {
		b := BuilderFor(cmd.Config()).
			WithBackend(r.backend).
			WithLogger(r.log).
			WithMetrics(r.metrics)
		return runWith(ctx, b, cmd)
	}

	if r.cfg.Retry != nil {
		inner := call
		rc := *r.cfg.Retry
		if rc.RetryIf == nil {
			rc.RetryIf = IsRetryable
		}
		call = func() (*Result, error) {
			return resilience.Retry(ctx, rc, inner)
		}
	}
	if r.breaker != nil {
		inner := call
		call = func() (*Result, error) {
			var res *Result
			err := r.breaker.Execute(func() error {
				var err error
				res, err = inner()
				return err
			})
			return res, err
		}
	}
	if r.bulk != nil {
		inner := call
		call = func() (*Result, error) {
			return resilience.ExecuteWithResult(r.bulk, ctx, inner)
		}
	}
	if r.limiter != nil {
		inner := call
		call = func() (*Result, error) {
			var res *Result
			err := r.limiter.ExecuteWait(ctx, func() error {
				var err error
				res, err = inner()
				return err
			})
			return res, err
		}
	}

	res, err := call()
	var exitErr *ExitError
	if res == nil && errors.As(err, &exitErr) {
		// guards that reject a call return no result
		res = exitErr.Result
	}
	return res, wrapGuardError(cmd.Program, err)
}

// IsRetryable reports whether err is an AppError marked retryable, such as
// a spawn that failed for lack of descriptors.
func IsRetryable(err error) bool {
	ae, ok := goerrors.AsAppError(err)
	return ok && ae.Retryable
}

// wrapGuardError turns rejections by a guard into AppErrors. Errors from the
// process itself pass through.
func wrapGuardError(program string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := goerrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return goerrors.ServiceUnavailable("process " + program).WithCause(err)
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return goerrors.ServiceUnavailable("process "+program).
			WithCause(err).
			WithDetail("reason", "concurrency limit reached")
	case errors.Is(err, resilience.ErrRateLimited):
		return goerrors.RateLimited().WithCause(err)
	default:
		return err
	}
}
