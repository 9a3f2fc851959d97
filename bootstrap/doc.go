// Package bootstrap runs a tool's components through a uniform lifecycle.
//
// NewApp applies config defaults, validates and initializes logging.
// RunTask starts every registered component, runs the task until it returns
// or a SIGINT/SIGTERM cancels it, then stops components in reverse order
// within the graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.OnStop(shutdownTelemetry)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return bridge(ctx, svc)
//	})
package bootstrap
