package process

import (
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	goerrors "github.com/kbukum/procpipe/errors"
)

// Config is the frozen description of one spawn.
type Config struct {
	Program string
	Args    []string
	// Dir is the child's working directory; empty means the caller's.
	Dir string
	// Env entries override the inherited environment.
	Env map[string]string

	RedirectStdin  bool
	RedirectStdout bool
	RedirectStderr bool
	// MergeOutputs sends the child's stderr wherever its stdout goes.
	MergeOutputs bool
}

// Validate checks the fields a spawn cannot do without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Program) == "" {
		return goerrors.InvalidInput("program", "is required")
	}
	for k := range c.Env {
		if k == "" || strings.ContainsAny(k, "=\x00") {
			return goerrors.InvalidInput("env", "invalid variable name "+strconv.Quote(k))
		}
	}
	return nil
}

// Environ returns the child's environment: the current process environment
// with Env applied on top, sorted by name.
func (c Config) Environ() []string {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		merged[envKey(k)] = kv[:len(k)] + "=" + v
	}
	for k, v := range c.Env {
		merged[envKey(k)] = k + "=" + v
	}
	keys := slices.Sorted(maps.Keys(merged))
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, merged[k])
	}
	return env
}

// clone returns a deep copy so later builder edits never reach a started
// process.
func (c Config) clone() Config {
	c.Args = slices.Clone(c.Args)
	c.Env = maps.Clone(c.Env)
	return c
}

// A merged stderr has no pipe of its own.
func (c Config) stderrPiped() bool {
	return c.RedirectStderr && !c.MergeOutputs
}

// resolve finds the executable and builds the environment for a spawn.
func (c Config) resolve() (path string, env []string, err error) {
	if err := c.Validate(); err != nil {
		return "", nil, err
	}
	env = c.Environ()
	path, err = lookPath(c.Program, lookupEnv(env, "PATH"), c.Dir)
	if err != nil {
		return "", nil, goerrors.Spawn(c.Program, err)
	}
	return path, env, nil
}

func lookupEnv(env []string, name string) string {
	for i := len(env) - 1; i >= 0; i-- {
		k, v, ok := strings.Cut(env[i], "=")
		if ok && envKey(k) == envKey(name) {
			return v
		}
	}
	return ""
}
