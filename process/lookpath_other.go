//go:build !unix && !windows

package process

import "errors"

func envKey(k string) string { return k }

func lookPath(program, pathEnv, dir string) (string, error) {
	return "", errors.ErrUnsupported
}
