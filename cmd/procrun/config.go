package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kbukum/procpipe/config"
	"github.com/kbukum/procpipe/observability"
	"github.com/kbukum/procpipe/process"
	"github.com/kbukum/procpipe/validation"
)

const appName = "procrun"

// Config is the procrun configuration file.
//
//	name: procrun
//	logging:
//	  level: info
//	telemetry:
//	  enabled: true
//	  endpoint: localhost:4318
//	profiles:
//	  upper:
//	    program: tr
//	    args: ["a-z", "A-Z"]
//	    redirect_stdin: true
//	    redirect_stdout: true
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Telemetry observability.Config       `yaml:"telemetry" mapstructure:"telemetry"`
	Profiles  map[string]process.Profile `yaml:"profiles" mapstructure:"profiles" validate:"dive"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = appName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	for name, p := range c.Profiles {
		if p.Name == "" {
			p.Name = name
			c.Profiles[name] = p
		}
	}
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(c.Profiles)) {
		if err := c.Profiles[name].Validate(); err != nil {
			return fmt.Errorf("profiles.%s: %w", name, err)
		}
	}
	return nil
}

// Profile returns the named profile. A name that is not configured runs as a
// program of that name with every stream bridged.
func (c *Config) Profile(name string) (process.Profile, bool) {
	if p, ok := c.Profiles[name]; ok {
		return p, true
	}
	return process.Profile{
		Name:           adHocName(name),
		Program:        name,
		RedirectStdin:  true,
		RedirectStdout: true,
		RedirectStderr: true,
	}, false
}

func adHocName(program string) string {
	if i := strings.LastIndexAny(program, `/\`); i >= 0 {
		program = program[i+1:]
	}
	return program
}
