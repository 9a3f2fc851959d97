//go:build windows

package process

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestLookPath_NoImplicitWorkingDirectory(t *testing.T) {
	cwd := t.TempDir()
	if err := os.WriteFile(filepath.Join(cwd, "tool.exe"), nil, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(cwd)
	t.Setenv("PATHEXT", ".exe")

	if _, err := lookPath("tool", "", ""); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("bare name found in working directory: %v", err)
	}
	if _, err := lookPath("tool", "", cwd); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("bare name found in child directory: %v", err)
	}

	got, err := lookPath("tool", cwd, "")
	if err != nil {
		t.Fatalf("lookPath on PATH: %v", err)
	}
	if want := filepath.Join(cwd, "tool.exe"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, err = lookPath(`.\tool`, "", cwd)
	if err != nil {
		t.Fatalf("explicit relative name: %v", err)
	}
	if want := filepath.Join(cwd, "tool.exe"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
