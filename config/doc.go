// Package config loads tool configuration with Viper.
//
// LoadConfig reads a YAML file (explicit, or found as <name>.yml in the
// working directory, ./config or the user config directory), an optional
// .env file loaded with godotenv, and environment variables prefixed with
// the upper-cased tool name. Later sources override earlier ones.
//
//	var cfg Config
//	err := config.LoadConfig("procrun", &cfg, config.WithConfigFile(path))
//
// ServiceConfig carries the name, environment and logging settings shared
// by every tool and is meant to be embedded.
package config
