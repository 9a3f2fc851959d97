package process

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	goerrors "github.com/kbukum/procpipe/errors"
	"github.com/kbukum/procpipe/logger"
	"github.com/kbukum/procpipe/observability"
	"github.com/kbukum/procpipe/stream"
)

// Handle is one reference to a spawned process.
//
// Handles created with Share refer to the same process; the native process
// reference and the parent's pipe ends are released when the last of them
// is closed. Closing never kills the process. A Handle must not be used after
// its own Close.
type Handle struct {
	c      *core
	closed atomic.Bool
}

type core struct {
	id      string
	cfg     Config
	proc    Native
	log     *logger.Logger
	metrics *observability.ProcessMetrics

	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	refs atomic.Int32

	mu   sync.Mutex
	in   *stream.OutputStream
	out  *stream.InputStream
	errs *stream.InputStream

	exitOnce sync.Once
	exited   atomic.Bool
}

func newHandle(cfg Config, sp *Spawned, log *logger.Logger, metrics *observability.ProcessMetrics) *Handle {
	c := &core{
		id:      uuid.NewString(),
		cfg:     cfg,
		proc:    sp.Process,
		metrics: metrics,
		stdin:   sp.Stdin,
		stdout:  sp.Stdout,
		stderr:  sp.Stderr,
	}
	c.log = log.WithFields(logger.Fields(
		logger.FieldHandleID, c.id,
		logger.FieldPID, sp.Process.Pid(),
		logger.FieldProgram, cfg.Program,
	))
	c.refs.Store(1)
	return &Handle{c: c}
}

// ID returns an identifier unique to this process for log correlation.
func (h *Handle) ID() string { return h.c.id }

// Pid returns the operating system process id.
func (h *Handle) Pid() int { return h.c.proc.Pid() }

// Config returns a copy of the configuration the process was started with.
func (h *Handle) Config() Config { return h.c.cfg.clone() }

// In returns the stream feeding the child's standard input. Closing it
// signals end of input to the child.
func (h *Handle) In() (*stream.OutputStream, error) {
	c := h.c
	if c.stdin == nil {
		return nil, goerrors.NotRedirected("stdin")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.in == nil {
		c.in = stream.NewOutputStream(c.stdin)
	}
	return c.in, nil
}

// Out returns the stream carrying the child's standard output, and its
// standard error too when outputs are merged.
func (h *Handle) Out() (*stream.InputStream, error) {
	c := h.c
	if c.stdout == nil {
		return nil, goerrors.NotRedirected("stdout")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out == nil {
		c.out = stream.NewInputStream(c.stdout)
	}
	return c.out, nil
}

// Err returns the stream carrying the child's standard error.
func (h *Handle) Err() (*stream.InputStream, error) {
	c := h.c
	if c.stderr == nil {
		return nil, goerrors.NotRedirected("stderr")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errs == nil {
		c.errs = stream.NewInputStream(c.stderr)
	}
	return c.errs, nil
}

// HasExited polls the process without blocking. A failed poll is logged and
// reported as still running.
func (h *Handle) HasExited() bool {
	exited, code, err := h.c.proc.Poll()
	if err != nil {
		h.c.log.Warn("poll failed", logger.ErrorFields("poll", err))
		return false
	}
	if exited {
		h.c.observe(code)
	}
	return exited
}

// Wait blocks until the process exits and returns its exit code, or
// ExitCodeSignaled if it did not exit on its own.
func (h *Handle) Wait() (int, error) {
	code, err := h.c.proc.Wait()
	if err != nil {
		return 0, err
	}
	h.c.observe(code)
	return code, nil
}

// ExitCode returns the exit code of a process that has exited. It fails with
// a NOT_EXITED error while the process is still running.
func (h *Handle) ExitCode() (int, error) {
	exited, code, err := h.c.proc.Poll()
	if err != nil {
		return 0, err
	}
	if !exited {
		return 0, goerrors.NotExited(h.Pid())
	}
	h.c.observe(code)
	return code, nil
}

// Kill asks the process to terminate, forcibly when force is set. It returns
// without waiting; use Wait to collect the process.
func (h *Handle) Kill(force bool) error {
	h.c.log.Debug("kill", logger.Fields(logger.FieldForce, force))
	return h.c.proc.Kill(force)
}

// Share returns another reference to the same process.
func (h *Handle) Share() *Handle {
	h.c.refs.Add(1)
	return &Handle{c: h.c}
}

// Close drops this reference. The last Close releases the parent's pipe ends
// and the native process reference; a running process keeps running.
func (h *Handle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	if h.c.refs.Add(-1) > 0 {
		return nil
	}
	return h.c.release()
}

func (c *core) observe(code int) {
	c.exitOnce.Do(func() {
		c.exited.Store(true)
		c.log.Debug("process exited", logger.Fields(logger.FieldExitCode, code))
		c.metrics.RecordExit(context.Background(), c.cfg.Program, code)
	})
}

func (c *core) release() error {
	var errs []error
	for _, cl := range []io.Closer{c.stdin, c.stdout, c.stderr} {
		if cl != nil {
			errs = append(errs, cl.Close())
		}
	}

	if exited, code, err := c.proc.Poll(); err == nil && exited {
		c.observe(code)
	}
	if !c.exited.Load() {
		c.metrics.RecordAbandoned(context.Background(), c.cfg.Program)
	}
	errs = append(errs, c.proc.Release())

	err := errors.Join(errs...)
	if err != nil {
		c.log.Warn("release failed", logger.ErrorFields("release", err))
	} else {
		c.log.Debug("released")
	}
	return err
}
