package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/procpipe/component"
	"github.com/kbukum/procpipe/logger"
)

// ComponentStatus is the state of one component at the end of startup.
type ComponentStatus struct {
	Name    string
	Type    string
	Details string
	Status  component.HealthStatus
	Message string
}

// Healthy reports whether the component passed its health check.
func (c ComponentStatus) Healthy() bool {
	return c.Status == component.StatusHealthy
}

// Summary records what an application started. It is written to the log
// rather than stdout, which belongs to the supervised child.
type Summary struct {
	name            string
	version         string
	startupDuration time.Duration
	components      []ComponentStatus
}

// NewSummary creates an empty summary.
func NewSummary(name, version string) *Summary {
	return &Summary{name: name, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Components returns the collected component states.
func (s *Summary) Components() []ComponentStatus {
	return s.components
}

// Collect replaces the component states with the registry's current ones.
func (s *Summary) Collect(ctx context.Context, registry *component.Registry) {
	s.components = s.components[:0]
	if registry == nil {
		return
	}
	health := make(map[string]component.Health)
	for _, h := range registry.HealthAll(ctx) {
		health[h.Name] = h
	}
	for _, c := range registry.All() {
		st := ComponentStatus{Name: c.Name()}
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			st.Type, st.Details = desc.Type, desc.Details
		}
		if h, ok := health[c.Name()]; ok {
			st.Status, st.Message = h.Status, h.Message
		}
		s.components = append(s.components, st)
	}
}

// Log writes the summary: one line for the application, one per component.
func (s *Summary) Log(log *logger.Logger) {
	healthy := 0
	for _, c := range s.components {
		if c.Healthy() {
			healthy++
		}
	}
	log.Info("started", logger.Fields(
		"name", s.name,
		"version", s.version,
		"components", len(s.components),
		"healthy", healthy,
		logger.FieldDuration, s.startupDuration.Milliseconds(),
	))
	for _, c := range s.components {
		fields := logger.Fields(
			logger.FieldComponent, c.Name,
			"type", c.Type,
			"details", c.Details,
			"status", string(c.Status),
		)
		if c.Message != "" {
			fields["message"] = c.Message
		}
		if c.Healthy() {
			log.Debug("component ready", fields)
		} else {
			log.Warn("component not healthy", fields)
		}
	}
}
