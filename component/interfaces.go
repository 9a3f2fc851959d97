package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is anything with a start/stop lifecycle, such as a supervised
// child process.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start starts the component. It returns once the component is running.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is a one-line summary of a component for startup output.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Type categorizes the component, e.g. "process".
	Type string
	// Details is a human-readable one-liner, e.g. "cat -u pid=4242".
	Details string
}

// Describable is optionally implemented by components that can summarize
// themselves.
type Describable interface {
	Describe() Description
}
