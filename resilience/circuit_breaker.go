package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/kbukum/procpipe/logger"
)

// State is the position of a circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without running the operation while the breaker
// is open, or half-open with all probe slots taken.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig struct {
	Name string
	// MaxFailures consecutive failures open the circuit.
	MaxFailures int
	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration
	// HalfOpenMaxCalls probes must all succeed to close the circuit again.
	HalfOpenMaxCalls int
	// IsFailure classifies an error; nil counts every non-nil error.
	IsFailure func(error) bool
	// OnStateChange is called with the breaker lock held; it must not call
	// back into the breaker.
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig returns the defaults for name.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// Counts are the breaker's counters for the current state.
type Counts struct {
	Requests             int
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
}

// CircuitBreaker stops running an operation that keeps failing. After
// Timeout it lets HalfOpenMaxCalls probes through; the first failed probe
// reopens it.
//
// Each state change starts a new generation. Results of calls admitted in
// an earlier generation are discarded, so a slow call that started while
// closed cannot reopen a circuit that has since recovered.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	log *logger.Logger
	now func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	openedAt   time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{
		cfg: cfg,
		log: logger.WithComponent("circuit_breaker").WithFields(logger.Fields("breaker", cfg.Name)),
		now: time.Now,
	}
}

// Execute runs fn unless the circuit is open, and records its outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	gen, err := cb.admit()
	if err != nil {
		return err
	}
	err = fn()
	cb.record(gen, cb.cfg.IsFailure(err))
	return err
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()
	return cb.state
}

// Counts returns the counters of the current state.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()
	return cb.counts
}

// Reset closes the circuit and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
	cb.counts = Counts{}
}

func (cb *CircuitBreaker) admit() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()

	switch cb.state {
	case StateOpen:
		return 0, ErrCircuitOpen
	case StateHalfOpen:
		if cb.counts.Requests >= cb.cfg.HalfOpenMaxCalls {
			return 0, ErrCircuitOpen
		}
	}
	cb.counts.Requests++
	return cb.generation, nil
}

func (cb *CircuitBreaker) record(gen uint64, failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advance()
	if gen != cb.generation {
		return
	}

	if failed {
		cb.counts.ConsecutiveFailures++
		cb.counts.ConsecutiveSuccesses = 0
		if cb.state == StateHalfOpen || cb.counts.ConsecutiveFailures >= cb.cfg.MaxFailures {
			cb.transition(StateOpen)
		}
		return
	}
	cb.counts.ConsecutiveSuccesses++
	cb.counts.ConsecutiveFailures = 0
	if cb.state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.cfg.HalfOpenMaxCalls {
		cb.transition(StateClosed)
	}
}

// advance moves an open circuit to half-open once its timeout has passed.
func (cb *CircuitBreaker) advance() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.Timeout {
		cb.transition(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.generation++
	cb.counts = Counts{}
	if to == StateOpen {
		cb.openedAt = cb.now()
	}

	cb.log.Info("circuit state changed", logger.Fields("from", from.String(), "to", to.String()))
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}
