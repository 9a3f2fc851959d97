//go:build windows

package process

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func envKey(k string) string { return strings.ToUpper(k) }

// lookPath resolves program against pathEnv, trying the extensions listed in
// PATHEXT when the name has none. A bare name is never looked up in the
// working directory; it must be on PATH or be written as .\name.
func lookPath(program, pathEnv, dir string) (string, error) {
	exts := []string{""}
	if filepath.Ext(program) == "" {
		exts = pathExts()
	}
	if strings.ContainsAny(program, `\/:`) {
		path := program
		if !filepath.IsAbs(path) && filepath.VolumeName(path) == "" && dir != "" {
			path = filepath.Join(dir, path)
		}
		if p, ok := findWithExt(path, exts); ok {
			return p, nil
		}
		return "", &fs.PathError{Op: "lookpath", Path: program, Err: fs.ErrNotExist}
	}
	for _, d := range filepath.SplitList(pathEnv) {
		if d == "" {
			continue
		}
		if p, ok := findWithExt(filepath.Join(d, program), exts); ok {
			return p, nil
		}
	}
	return "", &fs.PathError{Op: "lookpath", Path: program, Err: fs.ErrNotExist}
}

func pathExts() []string {
	v := os.Getenv("PATHEXT")
	if v == "" {
		return []string{".com", ".exe", ".bat", ".cmd"}
	}
	var exts []string
	for _, e := range strings.Split(strings.ToLower(v), ";") {
		if e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

func findWithExt(path string, exts []string) (string, bool) {
	for _, ext := range exts {
		fi, err := os.Stat(path + ext)
		if err == nil && !fi.IsDir() {
			return path + ext, true
		}
	}
	return "", false
}
