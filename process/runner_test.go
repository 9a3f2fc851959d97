package process_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/kbukum/procpipe/errors"
	"github.com/kbukum/procpipe/process"
	"github.com/kbukum/procpipe/resilience"
)

// flakyBackend fails the first n spawns with a retryable pipe error.
type flakyBackend struct {
	process.Backend
	failures atomic.Int32
}

func (b *flakyBackend) Spawn(cfg process.Config) (*process.Spawned, error) {
	if b.failures.Add(-1) >= 0 {
		return nil, goerrors.PipeCreation("stdout", errors.New("too many open files"))
	}
	return b.Backend.Spawn(cfg)
}

func fastRetry(attempts int) *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1,
	}
}

func TestRunnerRetriesRetryableSpawnErrors(t *testing.T) {
	backend := &flakyBackend{Backend: newMemoryBackend()}
	backend.failures.Store(2)

	var retries int
	retry := fastRetry(3)
	retry.OnRetry = func(int, error, time.Duration) { retries++ }

	runner := process.NewRunner(process.RunnerConfig{Retry: retry}).WithBackend(backend)
	if _, err := runner.Run(context.Background(), process.Command{Program: "true"}); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if retries != 2 {
		t.Errorf("expected 2 retries, got %d", retries)
	}
}

func TestRunnerDoesNotRetryExitErrors(t *testing.T) {
	var retries int
	retry := fastRetry(3)
	retry.OnRetry = func(int, error, time.Duration) { retries++ }

	runner := process.NewRunner(process.RunnerConfig{Retry: retry}).WithBackend(newMemoryBackend())
	result, err := runner.Run(context.Background(), process.Command{Program: "false"})

	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if result == nil || result.ExitCode != 1 {
		t.Fatalf("expected the failed result to be returned, got %+v", result)
	}
	if retries != 0 {
		t.Errorf("non-zero exit must not be retried, got %d retries", retries)
	}
}

func TestRunnerCircuitBreakerOpens(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			Name:             "false",
			MaxFailures:      2,
			Timeout:          time.Minute,
			HalfOpenMaxCalls: 1,
		},
	}).WithBackend(newMemoryBackend())

	for range 2 {
		if _, err := runner.Run(context.Background(), process.Command{Program: "false"}); err == nil {
			t.Fatal("expected exit error")
		}
	}

	_, err := runner.Run(context.Background(), process.Command{Program: "false"})
	if !goerrors.HasCode(err, goerrors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE once open, got %v", err)
	}
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen as cause, got %v", err)
	}
	if !process.IsRetryable(err) {
		t.Error("an open circuit should be retryable later")
	}
}

func TestRunnerBulkheadRejects(t *testing.T) {
	backend := newMemoryBackend()
	release := make(chan struct{})
	started := make(chan struct{})
	backend.Register("block", func(*process.MemoryProcess) int {
		close(started)
		<-release
		return 0
	})

	runner := process.NewRunner(process.RunnerConfig{
		Bulkhead: &resilience.BulkheadConfig{Name: "procs", MaxConcurrent: 1},
	}).WithBackend(backend)

	firstDone := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), process.Command{Program: "block"})
		firstDone <- err
	}()
	<-started

	_, err := runner.Run(context.Background(), process.Command{Program: "true"})
	if !goerrors.HasCode(err, goerrors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE while full, got %v", err)
	}
	if !errors.Is(err, resilience.ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull as cause, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := runner.Run(context.Background(), process.Command{Program: "true"}); err != nil {
		t.Fatalf("expected slot to be free again, got %v", err)
	}
}

func TestRunnerRateLimiterWaits(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{
		RateLimiter: &resilience.RateLimiterConfig{Name: "spawns", Rate: 1, Burst: 1},
	}).WithBackend(newMemoryBackend())

	if _, err := runner.Run(context.Background(), process.Command{Program: "true"}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := runner.Run(ctx, process.Command{Program: "true"})
	if err == nil {
		t.Fatal("expected the second run to be held back by the limiter")
	}
}
