package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	goerrors "github.com/kbukum/procpipe/errors"
	"github.com/kbukum/procpipe/logger"
	"github.com/kbukum/procpipe/observability"
)

// Run executes cmd, feeds it cmd.Stdin, collects its output and waits for it.
// If ctx is done first the process gets a graceful kill, then a forced one
// after the grace period; Run always waits for it to exit. A process that
// exits non-zero yields an *ExitError along with the Result.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	return runWith(ctx, BuilderFor(cmd.Config()), cmd)
}

func runWith(ctx context.Context, b *Builder, cmd Command) (*Result, error) {
	if cmd.Program == "" {
		return nil, goerrors.InvalidInput("program", "is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanProcessRun)
	defer span.End()

	start := time.Now()
	h, err := b.StartContext(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	var stdout, stderr bytes.Buffer
	var wg sync.WaitGroup
	collect := func(dst *bytes.Buffer, open func() (io.Reader, error)) {
		r, err := open()
		if err != nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = io.Copy(dst, r)
		}()
	}
	collect(&stdout, func() (io.Reader, error) { return h.Out() })
	collect(&stderr, func() (io.Reader, error) { return h.Err() })

	if in, err := h.In(); err == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cmd.Stdin != nil {
				// a child that exits without reading breaks the pipe; that is not an error of Run
				_, _ = io.Copy(in, cmd.Stdin)
			}
			_ = in.Close()
		}()
	}

	done := waitAsync(h)
	var w waitResult
	select {
	case w = <-done:
	case <-ctx.Done():
		w = terminate(context.Background(), h, done, cmd.gracePeriod(), h.c.log)
	}
	wg.Wait()

	if w.err != nil {
		observability.SetSpanError(ctx, w.err)
		return nil, goerrors.Internal(w.err)
	}
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: w.code,
		Duration: time.Since(start),
	}
	observability.SetSpanAttribute(ctx, observability.AttrExitCode, w.code)

	if err := ctx.Err(); err != nil {
		observability.SetSpanError(ctx, err)
		return result, fmt.Errorf("process: %s killed by context: %w", cmd.Program, err)
	}
	if w.code != 0 {
		return result, &ExitError{Program: cmd.Program, Result: result}
	}
	return result, nil
}

type waitResult struct {
	code int
	err  error
}

func waitAsync(h *Handle) <-chan waitResult {
	done := make(chan waitResult, 1)
	go func() {
		code, err := h.Wait()
		done <- waitResult{code, err}
	}()
	return done
}

// terminate kills gracefully and escalates to a forced kill once grace has
// elapsed or stop is done. It returns when the process has exited.
func terminate(stop context.Context, h *Handle, done <-chan waitResult, grace time.Duration, log *logger.Logger) waitResult {
	if err := h.Kill(false); err != nil {
		log.Warn("graceful kill failed", logger.ErrorFields("kill", err))
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case w := <-done:
		return w
	case <-timer.C:
	case <-stop.Done():
	}
	if err := h.Kill(true); err != nil {
		log.Warn("forced kill failed", logger.ErrorFields("kill", err))
	}
	return <-done
}
