package process

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kbukum/procpipe/component"
	"github.com/kbukum/procpipe/logger"
	"github.com/kbukum/procpipe/observability"
)

var _ component.Component = (*Service)(nil)
var _ component.Describable = (*Service)(nil)

// ErrAlreadyStarted is returned by Service.Start on a running service.
var ErrAlreadyStarted = errors.New("process: service already started")

// Service supervises one long-running process as a component. Stop asks the
// process to terminate, forces it after the profile's grace period or when
// the stop context ends, and always waits for it.
type Service struct {
	name    string
	profile Profile
	args    []string

	backend Backend
	log     *logger.Logger
	metrics *observability.ProcessMetrics

	mu sync.Mutex
	h  *Handle
}

// NewService returns a stopped service for profile.
func NewService(name string, profile Profile, extraArgs ...string) *Service {
	return &Service{
		name:    name,
		profile: profile,
		args:    extraArgs,
		log:     logger.WithComponent("process").WithFields(logger.Fields(logger.FieldProfile, name)),
	}
}

func (s *Service) WithBackend(b Backend) *Service {
	s.backend = b
	return s
}

func (s *Service) WithLogger(l *logger.Logger) *Service {
	s.log = l
	return s
}

func (s *Service) WithMetrics(m *observability.ProcessMetrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) Name() string { return s.name }

// Start spawns the process.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.h != nil {
		return ErrAlreadyStarted
	}
	h, err := s.profile.Builder(s.args...).
		WithBackend(s.backend).
		WithLogger(s.log).
		WithMetrics(s.metrics).
		StartContext(ctx)
	if err != nil {
		return err
	}
	s.h = h
	s.log.Info("service started", logger.Fields(logger.FieldPID, h.Pid()))
	return nil
}

// Handle returns a new reference to the running process, or nil when the
// service is stopped. The caller closes it.
func (s *Service) Handle() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.h == nil {
		return nil
	}
	return s.h.Share()
}

// Stop terminates the process and releases the service's reference.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	h := s.h
	s.h = nil
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	defer h.Close()

	grace := s.profile.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	exited := h.HasExited()
	done := waitAsync(h)
	var w waitResult
	if exited {
		w = <-done
	} else {
		w = terminate(ctx, h, done, grace, s.log)
	}
	if w.err != nil {
		return fmt.Errorf("process: stopping %s: %w", s.name, w.err)
	}
	s.log.Info("service stopped", logger.Fields(logger.FieldExitCode, w.code))
	return nil
}

// Health reports healthy while the process is running.
func (s *Service) Health(ctx context.Context) component.Health {
	h := s.Handle()
	if h != nil {
		defer h.Close()
	}

	health := component.Health{Name: s.name, Status: component.StatusHealthy}
	switch {
	case h == nil:
		health.Status = component.StatusUnhealthy
		health.Message = "not started"
	case h.HasExited():
		health.Status = component.StatusUnhealthy
		code, _ := h.ExitCode()
		health.Message = fmt.Sprintf("exited with code %d", code)
	default:
		health.Message = fmt.Sprintf("running pid=%d", h.Pid())
	}
	return health
}

// Describe summarizes the service for startup output.
func (s *Service) Describe() component.Description {
	cmd := append([]string{s.profile.Program}, s.profile.Args...)
	cmd = append(cmd, s.args...)
	return component.Description{
		Name:    s.name,
		Type:    "process",
		Details: strings.Join(cmd, " "),
	}
}
