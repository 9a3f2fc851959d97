package observability

import (
	"context"
	"errors"
	"time"
)

// Config is the telemetry section of a tool's configuration file.
type Config struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Init installs the tracer and meter providers described by cfg and returns
// a function that flushes and shuts both down. When telemetry is disabled
// nothing is installed and the returned function is a no-op.
func Init(ctx context.Context, cfg Config, serviceName, serviceVersion, environment string) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    environment,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		SampleRate:     cfg.SampleRate,
	})
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    environment,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		Interval:       cfg.MetricInterval,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	return func(ctx context.Context) error {
		return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}, nil
}
