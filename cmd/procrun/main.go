// Command procrun runs a configured process profile with its standard
// streams bridged to the terminal and exits with the child's exit code.
//
//	procrun [-config file] profile [args...]
//	procrun -version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/kbukum/procpipe/bootstrap"
	"github.com/kbukum/procpipe/config"
	"github.com/kbukum/procpipe/logger"
	"github.com/kbukum/procpipe/observability"
	"github.com/kbukum/procpipe/process"
	"github.com/kbukum/procpipe/version"
)

// Exit codes of procrun itself, as opposed to the child's.
const (
	exitStartFail = 1
	exitUsage     = 2

	// exitSignaled is what a shell reports for a child killed by SIGTERM.
	exitSignaled = 143
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "configuration file (default: search for procrun.yml)")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [-config file] profile [args...]\n", appName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, appName, version.Get())
		return 0
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	var cfg Config
	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if err := config.LoadConfig(appName, &cfg, opts...); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitStartFail
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitStartFail
	}
	log := app.Logger.WithComponent(appName)

	shutdown, err := observability.Init(ctx, cfg.Telemetry, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		log.Error("telemetry init failed", logger.ErrorFields("telemetry.init", err))
		return exitStartFail
	}
	app.OnStop(func(ctx context.Context) error { return shutdown(ctx) })

	metrics, err := observability.NewProcessMetrics(observability.Meter(appName))
	if err != nil {
		log.Warn("process metrics disabled", logger.ErrorFields("metrics.init", err))
	}

	profile, configured := cfg.Profile(fs.Arg(0))
	if !configured {
		log.Debug("no profile configured, running program directly", logger.Fields(logger.FieldProgram, profile.Program))
	}
	svc := process.NewService(profile.Name, profile, fs.Args()[1:]...).
		WithLogger(log.WithFields(logger.Fields(logger.FieldProfile, profile.Name))).
		WithMetrics(metrics)
	if err := app.RegisterComponent(svc); err != nil {
		log.Error("register failed", logger.ErrorFields("register", err))
		return exitStartFail
	}

	code := process.ExitCodeSignaled
	err = app.RunTask(ctx, func(ctx context.Context) error {
		if profile.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, profile.Timeout)
			defer cancel()
		}
		h := svc.Handle()
		if h == nil {
			return errors.New("process not running")
		}
		defer h.Close()

		c, err := bridge(ctx, h, stdin, stdout, stderr)
		code = c
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Info("terminated", logger.Fields("reason", err.Error()))
	default:
		log.Error("run failed", logger.ErrorFields("run", err))
		return exitStartFail
	}
	if code == process.ExitCodeSignaled {
		return exitSignaled
	}
	return code
}

// bridge connects the child's redirected streams to the given ones and waits
// for it to exit. When ctx ends first it returns the context error and leaves
// termination to the service's Stop.
func bridge(ctx context.Context, h *process.Handle, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	var wg sync.WaitGroup
	pump := func(dst io.Writer, src io.Reader) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = io.Copy(dst, src)
		}()
	}
	if out, err := h.Out(); err == nil {
		pump(stdout, out)
	}
	if errs, err := h.Err(); err == nil {
		pump(stderr, errs)
	}
	if in, err := h.In(); err == nil {
		// not waited for: a terminal read may never return
		go func() {
			_, _ = io.Copy(in, stdin)
			_ = in.Close()
		}()
	}

	done := make(chan struct{})
	var code int
	var waitErr error
	go func() {
		defer close(done)
		code, waitErr = h.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return process.ExitCodeSignaled, ctx.Err()
	}
	if waitErr != nil {
		return 0, waitErr
	}

	// output still buffered in the pipes after exit is drained, unless a
	// grandchild keeps them open
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
	}
	return code, nil
}

const drainTimeout = 2 * time.Second
