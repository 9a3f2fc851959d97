package process_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/procpipe/process"
)

// upper copies stdin to stdout in upper case and reports its arguments on
// stderr.
func upper(p *process.MemoryProcess) int {
	fmt.Fprint(p.Stderr, strings.Join(p.Args, ","))
	sc := bufio.NewScanner(p.Stdin)
	for sc.Scan() {
		fmt.Fprintln(p.Stdout, strings.ToUpper(sc.Text()))
	}
	return 0
}

// daemon runs until it is asked to stop.
func daemon(p *process.MemoryProcess) int {
	<-p.Killed()
	return 0
}

// stubborn ignores graceful kills.
func stubborn(*process.MemoryProcess) int {
	time.Sleep(time.Hour)
	return 0
}

func exitWith(code int) process.Program {
	return func(*process.MemoryProcess) int { return code }
}

func newMemoryBackend() *process.MemoryBackend {
	return process.NewMemoryBackend(map[string]process.Program{
		"upper":    upper,
		"daemon":   daemon,
		"stubborn": stubborn,
		"true":     exitWith(0),
		"false":    exitWith(1),
	})
}

func TestMemoryBackendRoundTrip(t *testing.T) {
	h, err := process.NewBuilder().
		WithBackend(newMemoryBackend()).
		Command("upper").
		Arguments("a", "b").
		RedirectStdin(true).
		RedirectStdout(true).
		RedirectStderr(true).
		Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.Close()

	in, _ := h.In()
	out, _ := h.Out()
	errs, _ := h.Err()

	var stderr bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&stderr, errs)
		close(done)
	}()

	if _, err := in.WriteString("hello\nworld\n"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	_ = in.Close()
	got, _ := io.ReadAll(out)
	<-done

	if string(got) != "HELLO\nWORLD\n" {
		t.Errorf("unexpected stdout %q", got)
	}
	if stderr.String() != "a,b" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
	if code, err := h.Wait(); err != nil || code != 0 {
		t.Errorf("Wait = %d, %v", code, err)
	}
}

func TestMemoryBackendExitCodes(t *testing.T) {
	backend := newMemoryBackend()
	backend.Register("seven", exitWith(7))

	h, err := process.NewBuilder().WithBackend(backend).Command("seven").Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.Close()
	if code, _ := h.Wait(); code != 7 {
		t.Fatalf("expected 7, got %d", code)
	}
	if !h.HasExited() {
		t.Fatal("expected HasExited after Wait")
	}
}

func TestMemoryBackendSpawnErrors(t *testing.T) {
	b := process.NewBuilder().WithBackend(newMemoryBackend())

	if _, err := b.Command("missing").Start(); !errors.Is(err, process.ErrSpawn) {
		t.Errorf("expected ErrSpawn, got %v", err)
	}
	if _, err := b.Command("true").Directory("/nonexistent/procpipe").Start(); !errors.Is(err, process.ErrDirectoryChange) {
		t.Errorf("expected ErrDirectoryChange, got %v", err)
	}
	if _, err := process.NewBuilder().WithBackend(newMemoryBackend()).Start(); err == nil {
		t.Error("expected error for empty program")
	}
}

func TestMemoryBackendKill(t *testing.T) {
	backend := newMemoryBackend()

	h, err := process.NewBuilder().WithBackend(backend).Command("daemon").Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.Close()
	if h.HasExited() {
		t.Fatal("daemon exited early")
	}
	if err := h.Kill(false); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}
	if code, _ := h.Wait(); code != process.ExitCodeSignaled {
		t.Errorf("expected signaled exit, got %d", code)
	}

	s, err := process.NewBuilder().WithBackend(backend).Command("stubborn").Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Close()
	_ = s.Kill(false)
	if s.HasExited() {
		t.Fatal("stubborn program should survive a graceful kill")
	}
	_ = s.Kill(true)
	if code, _ := s.Wait(); code != process.ExitCodeSignaled {
		t.Errorf("expected signaled exit, got %d", code)
	}
}

func TestRunWithMemoryBackendTimeout(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{}).WithBackend(newMemoryBackend())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := runner.Run(ctx, process.Command{Program: "stubborn", GracePeriod: 20 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if result == nil || result.ExitCode != process.ExitCodeSignaled {
		t.Fatalf("expected signaled result, got %+v", result)
	}
}

func TestRunnerPlain(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{}).WithBackend(newMemoryBackend())
	result, err := runner.Run(context.Background(), process.Command{
		Program: "upper",
		Stdin:   strings.NewReader("abc\n"),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if string(result.Stdout) != "ABC\n" {
		t.Errorf("unexpected stdout %q", result.Stdout)
	}
}
