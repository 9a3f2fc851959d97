package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/procpipe/component"
	"github.com/kbukum/procpipe/logger"
)

// DefaultGracefulTimeout bounds the shutdown phase when no option sets it.
const DefaultGracefulTimeout = 15 * time.Second

// App gives a tool a uniform lifecycle around its components. The type
// parameter C is the config type; any struct embedding config.ServiceConfig
// satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(process.NewService("worker", profile))
//	err = app.RunTask(ctx, func(ctx context.Context) error { ... })
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration

	onStart []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		gracefulTimeout: DefaultGracefulTimeout,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// RunTask starts the components, runs task and shuts down when the task
// returns. SIGINT and SIGTERM cancel the task's context. The task's error
// takes precedence over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.startup(taskCtx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.Warn("shutdown after failed startup", logger.ErrorFields("stop", stopErr))
		}
		return err
	}

	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("received signal, task canceled")
	}

	stopErr := a.stop()
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Debug("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields("error", err.Error()))
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Collect(ctx, a.Components)
	a.Summary.Log(a.Logger)
	return nil
}

// Shutdown stops the application. Use it when managing the lifecycle by hand.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

// stop runs the stop hooks and then stops components in reverse order, all
// within the graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.Fields("error", err.Error()))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields("error", err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}
	a.Logger.Debug("shutdown complete")
	return shutdownErr
}
