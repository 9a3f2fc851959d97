package process

import (
	"io"
	"slices"
	"strings"
	"time"

	goerrors "github.com/kbukum/procpipe/errors"
	"github.com/kbukum/procpipe/validation"
)

// Profile is a named command definition loaded from configuration.
//
//	profiles:
//	  upper:
//	    program: tr
//	    args: ["a-z", "A-Z"]
//	    env: ["LC_ALL=C"]
//	    redirect_stdin: true
//	    redirect_stdout: true
//	    grace_period: 2s
type Profile struct {
	Name    string   `yaml:"name" mapstructure:"name"`
	Program string   `yaml:"program" mapstructure:"program" validate:"required"`
	Args    []string `yaml:"args" mapstructure:"args"`
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	// Env entries are KEY=VALUE; a list keeps key case intact through the
	// config loader.
	Env []string `yaml:"env" mapstructure:"env" validate:"dive,contains=="`

	RedirectStdin  bool `yaml:"redirect_stdin" mapstructure:"redirect_stdin"`
	RedirectStdout bool `yaml:"redirect_stdout" mapstructure:"redirect_stdout"`
	RedirectStderr bool `yaml:"redirect_stderr" mapstructure:"redirect_stderr"`
	MergeOutputs   bool `yaml:"merge_outputs" mapstructure:"merge_outputs"`

	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0"`
	// Timeout bounds Run; zero means no limit.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// Validate checks the profile's struct tags and environment entries.
func (p Profile) Validate() error {
	if err := validation.Validate(p); err != nil {
		return err
	}
	for _, kv := range p.Env {
		if strings.HasPrefix(kv, "=") {
			return goerrors.InvalidInput("env", "empty variable name in "+kv)
		}
	}
	return nil
}

// Config returns the spawn configuration with extra arguments appended.
func (p Profile) Config(extraArgs ...string) Config {
	cfg := Config{
		Program:        p.Program,
		Args:           append(slices.Clone(p.Args), extraArgs...),
		Dir:            p.Dir,
		RedirectStdin:  p.RedirectStdin,
		RedirectStdout: p.RedirectStdout,
		RedirectStderr: p.RedirectStderr,
		MergeOutputs:   p.MergeOutputs,
	}
	if len(p.Env) > 0 {
		cfg.Env = make(map[string]string, len(p.Env))
		for _, kv := range p.Env {
			k, v, _ := strings.Cut(kv, "=")
			cfg.Env[k] = v
		}
	}
	return cfg
}

// Builder returns a builder preloaded with the profile.
func (p Profile) Builder(extraArgs ...string) *Builder {
	return BuilderFor(p.Config(extraArgs...))
}

// Command returns a one-shot command for Run.
func (p Profile) Command(stdin io.Reader, extraArgs ...string) Command {
	cfg := p.Config(extraArgs...)
	return Command{
		Program:      cfg.Program,
		Args:         cfg.Args,
		Dir:          cfg.Dir,
		Env:          cfg.Env,
		Stdin:        stdin,
		MergeOutputs: cfg.MergeOutputs,
		GracePeriod:  p.GracePeriod,
	}
}
