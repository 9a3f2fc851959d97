package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/procpipe/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs an OTLP/HTTP meter provider as the global provider.
// The caller shuts it down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Spawn outcomes recorded in the status attribute.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ProcessMetrics holds the instruments for child process lifecycles. A nil
// *ProcessMetrics records nothing.
type ProcessMetrics struct {
	spawnTotal    metric.Int64Counter
	spawnDuration metric.Float64Histogram
	active        metric.Int64UpDownCounter
	exitTotal     metric.Int64Counter
}

// NewProcessMetrics creates the process instruments on meter.
func NewProcessMetrics(meter metric.Meter) (*ProcessMetrics, error) {
	spawnTotal, err := meter.Int64Counter("process.spawn.total",
		metric.WithDescription("Spawn attempts by program and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.spawn.total counter: %w", err)
	}

	spawnDuration, err := meter.Float64Histogram("process.spawn.duration",
		metric.WithDescription("Time to create a process in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.spawn.duration histogram: %w", err)
	}

	active, err := meter.Int64UpDownCounter("process.active",
		metric.WithDescription("Processes spawned and not yet observed to exit"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.active counter: %w", err)
	}

	exitTotal, err := meter.Int64Counter("process.exit.total",
		metric.WithDescription("Observed process exits by program and code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.exit.total counter: %w", err)
	}

	return &ProcessMetrics{
		spawnTotal:    spawnTotal,
		spawnDuration: spawnDuration,
		active:        active,
		exitTotal:     exitTotal,
	}, nil
}

// RecordSpawn records one spawn attempt. A successful spawn also counts the
// process as active.
func (m *ProcessMetrics) RecordSpawn(ctx context.Context, program, status string, d time.Duration) {
	if m == nil {
		return
	}
	prog := attribute.String(AttrProgram, program)
	m.spawnTotal.Add(ctx, 1, metric.WithAttributes(prog, attribute.String(AttrStatus, status)))
	m.spawnDuration.Record(ctx, d.Seconds(), metric.WithAttributes(prog))
	if status == StatusOK {
		m.active.Add(ctx, 1, metric.WithAttributes(prog))
	}
}

// RecordExit records an observed exit and removes the process from the
// active count.
func (m *ProcessMetrics) RecordExit(ctx context.Context, program string, code int) {
	if m == nil {
		return
	}
	prog := attribute.String(AttrProgram, program)
	m.active.Add(ctx, -1, metric.WithAttributes(prog))
	m.exitTotal.Add(ctx, 1, metric.WithAttributes(prog, attribute.String(AttrExitCode, strconv.Itoa(code))))
}

// RecordAbandoned removes a process that was released without its exit being
// observed from the active count.
func (m *ProcessMetrics) RecordAbandoned(ctx context.Context, program string) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrProgram, program)))
}
