package process

import (
	"io"
	"maps"
	"slices"
	"time"
)

// DefaultGracePeriod is how long Run waits after a graceful kill before
// forcing termination.
const DefaultGracePeriod = 5 * time.Second

// Command configures a one-shot execution for Run.
type Command struct {
	// Program is the executable path or name (resolved via PATH).
	Program string
	Args    []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env overrides variables of the inherited environment.
	Env map[string]string
	// Stdin provides input to the process. A nil Stdin is an empty input.
	// Run returns only once Stdin is exhausted or the child stops reading.
	Stdin io.Reader
	// MergeOutputs collects stderr into Result.Stdout.
	MergeOutputs bool
	// GracePeriod is how long to wait after a graceful kill before a forced
	// one. Defaults to DefaultGracePeriod if zero.
	GracePeriod time.Duration
}

// Config returns the spawn configuration Run uses for c: every stream is
// redirected.
func (c Command) Config() Config {
	return Config{
		Program:        c.Program,
		Args:           slices.Clone(c.Args),
		Dir:            c.Dir,
		Env:            maps.Clone(c.Env),
		RedirectStdin:  true,
		RedirectStdout: true,
		RedirectStderr: true,
		MergeOutputs:   c.MergeOutputs,
	}
}

func (c Command) gracePeriod() time.Duration {
	if c.GracePeriod > 0 {
		return c.GracePeriod
	}
	return DefaultGracePeriod
}
