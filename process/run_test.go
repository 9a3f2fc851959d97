//go:build unix

package process_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/procpipe/process"
)

func TestRunEcho(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Program: "echo",
		Args:    []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	out := strings.TrimSpace(string(result.Stdout))
	if out != "hello world" {
		t.Fatalf("expected 'hello world', got %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Program: "cat",
		Stdin:   strings.NewReader("from stdin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(result.Stdout)
	if out != "from stdin" {
		t.Fatalf("expected 'from stdin', got %q", out)
	}
}

func TestRunNilStdinIsEmpty(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{Program: "cat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Stdout) != 0 {
		t.Fatalf("expected no output, got %q", result.Stdout)
	}
}

func TestRunExitCode(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Program: "sh",
		Args:    []string{"-c", "exit 42"},
	})
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if result.ExitCode != 42 || exitErr.Result != result {
		t.Fatalf("expected exit code 42, got %d", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "exited with code 42") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRunStderr(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Program: "sh",
		Args:    []string{"-c", "echo oops >&2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stderr := strings.TrimSpace(string(result.Stderr))
	if stderr != "oops" {
		t.Fatalf("expected 'oops' on stderr, got %q", stderr)
	}
}

func TestRunMergeOutputs(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Program:      "sh",
		Args:         []string{"-c", "echo out; echo err >&2"},
		MergeOutputs: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Stdout) != "out\nerr\n" {
		t.Fatalf("expected both streams on stdout, got %q", result.Stdout)
	}
	if len(result.Stderr) != 0 {
		t.Fatalf("expected empty stderr, got %q", result.Stderr)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Program:     "sleep",
		Args:        []string{"10"},
		GracePeriod: 500 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if result.ExitCode != process.ExitCodeSignaled {
		t.Fatalf("expected signaled exit code, got %d", result.ExitCode)
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long to kill: %v", result.Duration)
	}
}

func TestRunForcedAfterGrace(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := process.Run(ctx, process.Command{
		Program:     "sh",
		Args:        []string{"-c", "trap '' TERM; exec sleep 10"},
		GracePeriod: 200 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if result.ExitCode != process.ExitCodeSignaled {
		t.Fatalf("expected signaled exit code, got %d", result.ExitCode)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("forced kill did not happen after the grace period")
	}
}

func TestRunEmptyProgram(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	if err == nil {
		t.Fatal("expected error for empty program")
	}
}

func TestRunMissingProgram(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{Program: "procpipe-no-such-program"})
	if !errors.Is(err, process.ErrSpawn) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
}

func TestRunDuration(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Program: "sleep",
		Args:    []string{"0.1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duration < 50*time.Millisecond {
		t.Fatalf("duration too short: %v", result.Duration)
	}
}

func TestRunEnv(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Program: "sh",
		Args:    []string{"-c", "echo $MY_TEST_VAR"},
		Env:     map[string]string{"MY_TEST_VAR": "hello123"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := strings.TrimSpace(string(result.Stdout))
	if out != "hello123" {
		t.Fatalf("expected 'hello123', got %q", out)
	}
}
