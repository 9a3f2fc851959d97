package resilience

import (
	"errors"
	"testing"
	"time"
)

var errSpawn = errors.New("spawn failed")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker(cfg)
	cb.now = clock.now
	return cb, clock
}

func fail() error { return errSpawn }
func pass() error { return nil }

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{Name: "spawn", MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		_ = cb.Execute(fail)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %s after 2 failures", cb.State())
	}
	_ = cb.Execute(pass)
	if got := cb.Counts().ConsecutiveFailures; got != 0 {
		t.Fatalf("success did not reset failures: %d", got)
	}

	for i := 0; i < 3; i++ {
		_ = cb.Execute(fail)
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Fatal("operation ran while open")
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	var transitions []string
	cb, clock := newTestBreaker(CircuitBreakerConfig{
		MaxFailures:      1,
		Timeout:          10 * time.Second,
		HalfOpenMaxCalls: 2,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})

	_ = cb.Execute(fail)
	clock.advance(9 * time.Second)
	if cb.State() != StateOpen {
		t.Fatal("opened circuit half-opened early")
	}
	clock.advance(time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %s, want half-open", cb.State())
	}

	if err := cb.Execute(pass); err != nil {
		t.Fatal(err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatal("closed before all probes succeeded")
	}
	if err := cb.Execute(pass); err != nil {
		t.Fatal(err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %s, want closed", cb.State())
	}

	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Second})
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	clock.advance(time.Second)

	_ = cb.Execute(fail)
	if cb.State() != StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}
}

func TestCircuitBreaker_LimitsProbes(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Second})
	_ = cb.Execute(fail)
	clock.advance(time.Second)

	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- cb.Execute(func() error { <-release; return nil })
	}()

	// wait for the probe to be admitted
	for cb.Counts().Requests == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := cb.Execute(pass); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("second probe err = %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %s", cb.State())
	}
}

func TestCircuitBreaker_StaleResultIgnored(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	// a slow call admitted while closed
	gen, err := cb.admit()
	if err != nil {
		t.Fatal(err)
	}
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	if cb.State() != StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}

	cb.record(gen, false)
	if cb.State() != StateOpen {
		t.Fatal("result from an older generation was counted")
	}
}

func TestCircuitBreaker_IsFailure(t *testing.T) {
	notFound := errors.New("no such program")
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return err != nil && !errors.Is(err, notFound) },
	})

	if err := cb.Execute(func() error { return notFound }); !errors.Is(err, notFound) {
		t.Fatalf("err = %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatal("ignored error opened the circuit")
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1})
	_ = cb.Execute(fail)
	cb.Reset()
	if cb.State() != StateClosed {
		t.Fatalf("state = %s", cb.State())
	}
	if err := cb.Execute(pass); err != nil {
		t.Fatal(err)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(9):      "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
