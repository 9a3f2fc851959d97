//go:build !unix && !windows

package process

import "errors"

var defaultBackend Backend = unsupportedBackend{}

type unsupportedBackend struct{}

func (unsupportedBackend) Spawn(cfg Config) (*Spawned, error) {
	return nil, spawnError(cfg, errors.ErrUnsupported)
}

func dirAccessError(string) error { return nil }
