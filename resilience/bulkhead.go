package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/procpipe/logger"
)

var (
	// ErrBulkheadFull is returned when no slot is free and MaxWait is zero.
	ErrBulkheadFull = errors.New("bulkhead is full")
	// ErrBulkheadTimeout is returned when no slot frees up within MaxWait.
	ErrBulkheadTimeout = errors.New("bulkhead wait timed out")
)

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	Name          string
	MaxConcurrent int
	// MaxWait bounds how long a call queues for a slot. Zero rejects
	// immediately.
	MaxWait time.Duration
}

// Bulkhead caps the number of operations running at once.
type Bulkhead struct {
	name    string
	maxWait time.Duration
	slots   chan struct{}
	log     *logger.Logger
}

// NewBulkhead creates a bulkhead. MaxConcurrent defaults to 10.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Bulkhead{
		name:    cfg.Name,
		maxWait: cfg.MaxWait,
		slots:   make(chan struct{}, cfg.MaxConcurrent),
		log:     logger.WithComponent("bulkhead").WithFields(logger.Fields("bulkhead", cfg.Name)),
	}
}

// Acquire takes a slot. The returned release must be called exactly once.
func (b *Bulkhead) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case b.slots <- struct{}{}:
		return b.release, nil
	default:
	}

	if b.maxWait <= 0 {
		b.log.Debug("bulkhead rejected call", logger.Fields("in_use", b.InUse()))
		return nil, ErrBulkheadFull
	}

	t := time.NewTimer(b.maxWait)
	defer t.Stop()
	select {
	case b.slots <- struct{}{}:
		return b.release, nil
	case <-t.C:
		b.log.Debug("bulkhead wait timed out", logger.Fields("max_wait", b.maxWait.String()))
		return nil, ErrBulkheadTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Execute runs fn in a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	release, err := b.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// InUse returns the number of occupied slots.
func (b *Bulkhead) InUse() int { return len(b.slots) }

// Available returns the number of free slots.
func (b *Bulkhead) Available() int { return cap(b.slots) - len(b.slots) }

// Name returns the configured name.
func (b *Bulkhead) Name() string { return b.name }

func (b *Bulkhead) release() { <-b.slots }

// ExecuteWithResult runs fn in a slot of b and returns its result.
func ExecuteWithResult[T any](b *Bulkhead, ctx context.Context, fn func() (T, error)) (T, error) {
	var res T
	err := b.Execute(ctx, func() error {
		var err error
		res, err = fn()
		return err
	})
	return res, err
}
