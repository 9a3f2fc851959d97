// Package observability bootstraps OpenTelemetry tracing and metrics and
// defines the instruments recorded for child processes.
//
//	shutdown, err := observability.Init(ctx, cfg.Telemetry, "procrun", version.Version, "production")
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewProcessMetrics(observability.Meter("procrun"))
//	metrics.RecordSpawn(ctx, "cat", observability.StatusOK, d)
package observability
