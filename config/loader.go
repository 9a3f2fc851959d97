package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/procpipe/logger"
)

// FileSystem abstracts the file lookups done by the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	UserConfigDir() (string, error)
}

// RealFileSystem implements FileSystem on the host file system.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) UserConfigDir() (string, error) {
	return os.UserConfigDir()
}

// Resolver finds the config and env files for a tool.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, searching the standard
// locations for whichever was not given.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.firstExisting(r.configCandidates(name))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.firstExisting([]string{".env." + name, ".env"})
	}
	return resolved
}

// configCandidates lists, in priority order, the files searched for a tool
// named name: the working directory, ./config and the user config dir.
func (r *Resolver) configCandidates(name string) []string {
	var paths []string
	for _, ext := range []string{".yml", ".yaml"} {
		paths = append(paths,
			name+ext,
			filepath.Join("config", name+ext),
		)
	}
	if dir, err := r.FileSystem.UserConfigDir(); err == nil && dir != "" {
		paths = append(paths,
			filepath.Join(dir, name, "config.yml"),
			filepath.Join(dir, name, "config.yaml"),
		)
	}
	return paths
}

func (r *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file; missing or unreadable is an error
	EnvFile    string // explicit .env file
	EnvPrefix  string // defaults to the upper-cased tool name plus "_"
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides the prefix of environment variables bound into
// the configuration.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// LoadConfig loads configuration for the tool called name into cfg.
//
// Sources, lowest priority first: the YAML config file, the .env file, then
// process environment variables carrying the env prefix. PROCRUN_LOGGING_LEVEL
// sets logging.level for a tool named "procrun".
func LoadConfig(name string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{EnvPrefix: envPrefix(name)}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)
	v := viper.New()

	if files.ConfigFile != "" {
		explicit := lc.ConfigFile != ""
		if explicit && !lc.FileSystem.Exists(files.ConfigFile) {
			return fmt.Errorf("config file %s not found", files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			if explicit {
				return fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
			}
			logger.Warn("ignoring unreadable config file", logger.ErrorFields("config.read", err))
		} else {
			logger.Debug("config file loaded", logger.Fields("path", files.ConfigFile))
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("ignoring unreadable env file", logger.Fields("path", files.EnvFile, "error", err.Error()))
		}
	}

	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", name, err)
	}
	return nil
}

func envPrefix(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"
}

// bindEnv sets every prefixed variable in environ on v under all the nested
// key spellings it could stand for.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || prefix == "" || !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, variant := range envKeyVariants(strings.TrimPrefix(key, prefix)) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants returns the config keys an environment variable may address.
//
//	LOGGING_LEVEL -> [logging_level, logging.level]
//	TELEMETRY_SAMPLE_RATE -> [telemetry_sample_rate, telemetry.sample.rate,
//	    telemetry.sample_rate, telemetry_sample.rate]
func envKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{lowerKey, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants,
			strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"),
			strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."),
		)
	}
	return removeDuplicates(variants)
}

func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
