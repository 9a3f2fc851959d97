//go:build unix

package process

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeExecutable(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
}

func TestLookPath(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeExecutable(t, filepath.Join(first, "tool"), 0o644)
	writeExecutable(t, filepath.Join(second, "tool"), 0o755)
	if err := os.Mkdir(filepath.Join(first, "dir"), 0o755); err != nil {
		t.Fatal(err)
	}
	pathEnv := first + string(filepath.ListSeparator) + second

	got, err := lookPath("tool", pathEnv, "")
	if err != nil {
		t.Fatalf("lookPath failed: %v", err)
	}
	if got != filepath.Join(second, "tool") {
		t.Errorf("expected the executable candidate, got %q", got)
	}

	if _, err := lookPath("dir", first, ""); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("directories are not executables, got %v", err)
	}
	if _, err := lookPath("missing", pathEnv, ""); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not exist, got %v", err)
	}
	if got, _ := lookPath("./anything", "", ""); got != "./anything" {
		t.Errorf("names with a slash are used as given, got %q", got)
	}
}

func TestLookPathRelativeToDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeExecutable(t, filepath.Join(dir, "bin", "tool"), 0o755)

	got, err := lookPath("tool", "bin", dir)
	if err != nil {
		t.Fatalf("lookPath failed: %v", err)
	}
	if got != "./bin/tool" {
		t.Errorf("expected ./bin/tool, got %q", got)
	}
}
