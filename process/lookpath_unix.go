//go:build unix

package process

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

func envKey(k string) string { return k }

// lookPath resolves a bare program name against pathEnv. Names containing a
// slash are used as given; the kernel resolves them relative to dir.
func lookPath(program, pathEnv, dir string) (string, error) {
	if strings.Contains(program, "/") {
		return program, nil
	}
	for _, d := range filepath.SplitList(pathEnv) {
		if d == "" {
			d = "."
		}
		candidate := filepath.Join(d, program)
		check := candidate
		if !filepath.IsAbs(candidate) && dir != "" {
			// exec runs after the child has changed directory
			check = filepath.Join(dir, candidate)
			candidate = "./" + candidate
		}
		if isExecutable(check) {
			return candidate, nil
		}
	}
	return "", &fs.PathError{Op: "lookpath", Path: program, Err: fs.ErrNotExist}
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
