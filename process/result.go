package process

import (
	"fmt"
	"time"
)

// Result holds the output and status of a completed process.
type Result struct {
	Stdout []byte
	// Stderr is empty when outputs were merged.
	Stderr []byte
	// ExitCode is the process exit code, or ExitCodeSignaled if it was killed.
	ExitCode int
	// Duration is the time from spawn to exit.
	Duration time.Duration
}

// Success reports whether the process exited with code 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// ExitError is returned by Run when the process ran but did not succeed.
type ExitError struct {
	Program string
	Result  *Result
}

func (e *ExitError) Error() string {
	if e.Result.ExitCode == ExitCodeSignaled {
		return fmt.Sprintf("process: %s was terminated", e.Program)
	}
	return fmt.Sprintf("process: %s exited with code %d", e.Program, e.Result.ExitCode)
}
