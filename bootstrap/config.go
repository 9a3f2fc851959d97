package bootstrap

import "github.com/kbukum/procpipe/config"

// Config is the constraint for application config types. Structs embedding
// config.ServiceConfig satisfy it through promoted methods.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
