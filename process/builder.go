package process

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/procpipe/logger"
	"github.com/kbukum/procpipe/observability"
)

// Builder accumulates the configuration of a process. Each Start spawns a new
// independent process from the configuration as it is at that moment.
// A Builder is not safe for concurrent modification.
type Builder struct {
	cfg     Config
	backend Backend
	log     *logger.Logger
	metrics *observability.ProcessMetrics
}

// NewBuilder returns a builder with nothing redirected, using the default
// backend and the global logger.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuilderFor returns a builder initialized from cfg.
func BuilderFor(cfg Config) *Builder {
	return &Builder{cfg: cfg.clone()}
}

// Command sets the program to run. A name without a path separator is looked
// up on the PATH of the child's environment.
func (b *Builder) Command(program string) *Builder {
	b.cfg.Program = program
	return b
}

// Arguments replaces the argument vector, not including the program name.
func (b *Builder) Arguments(args ...string) *Builder {
	b.cfg.Args = slices.Clone(args)
	return b
}

// Directory sets the child's working directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Dir = dir
	return b
}

// Environment sets one variable in the child's environment, overriding the
// inherited value.
func (b *Builder) Environment(key, value string) *Builder {
	if b.cfg.Env == nil {
		b.cfg.Env = make(map[string]string)
	}
	b.cfg.Env[key] = value
	return b
}

// MergeOutputs sends the child's standard error to the same place as its
// standard output.
func (b *Builder) MergeOutputs(merge bool) *Builder {
	b.cfg.MergeOutputs = merge
	return b
}

func (b *Builder) RedirectStdin(redirect bool) *Builder {
	b.cfg.RedirectStdin = redirect
	return b
}

func (b *Builder) RedirectStdout(redirect bool) *Builder {
	b.cfg.RedirectStdout = redirect
	return b
}

func (b *Builder) RedirectStderr(redirect bool) *Builder {
	b.cfg.RedirectStderr = redirect
	return b
}

// WithBackend replaces the platform backend.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

func (b *Builder) WithLogger(l *logger.Logger) *Builder {
	b.log = l
	return b
}

func (b *Builder) WithMetrics(m *observability.ProcessMetrics) *Builder {
	b.metrics = m
	return b
}

// Config returns a copy of the current configuration.
func (b *Builder) Config() Config {
	return b.cfg.clone()
}

// Start spawns the configured process.
func (b *Builder) Start() (*Handle, error) {
	return b.StartContext(context.Background())
}

// StartContext spawns the configured process, recording a span in ctx. The
// context does not bound the lifetime of the process.
func (b *Builder) StartContext(ctx context.Context) (*Handle, error) {
	cfg := b.cfg.clone()
	backend := b.backend
	if backend == nil {
		backend = DefaultBackend()
	}
	log := b.log
	if log == nil {
		log = logger.WithComponent("process")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanProcessSpawn,
		trace.WithAttributes(attribute.String(observability.AttrProgram, cfg.Program)))
	defer span.End()

	start := time.Now()
	sp, err := backend.Spawn(cfg)
	elapsed := time.Since(start)
	if err != nil {
		b.metrics.RecordSpawn(ctx, cfg.Program, observability.StatusError, elapsed)
		observability.SetSpanError(ctx, err)
		log.WithContext(ctx).Debug("spawn failed", logger.Fields(
			logger.FieldProgram, cfg.Program,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}
	b.metrics.RecordSpawn(ctx, cfg.Program, observability.StatusOK, elapsed)
	observability.SetSpanAttribute(ctx, observability.AttrPID, sp.Process.Pid())

	h := newHandle(cfg, sp, log.WithContext(ctx), b.metrics)
	h.c.log.Debug("spawned", logger.Fields(
		logger.FieldArgs, cfg.Args,
		logger.FieldDir, cfg.Dir,
		"redirect", redirectSummary(cfg),
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return h, nil
}

func redirectSummary(cfg Config) string {
	s := []byte("---")
	if cfg.RedirectStdin {
		s[0] = 'i'
	}
	if cfg.RedirectStdout {
		s[1] = 'o'
	}
	if cfg.MergeOutputs {
		s[2] = 'm'
	} else if cfg.RedirectStderr {
		s[2] = 'e'
	}
	return string(s)
}

// Exec starts program with args and all three standard streams redirected.
func Exec(program string, args ...string) (*Handle, error) {
	return NewBuilder().
		Command(program).
		Arguments(args...).
		RedirectStdin(true).
		RedirectStdout(true).
		RedirectStderr(true).
		Start()
}
