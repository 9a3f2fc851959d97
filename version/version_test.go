package version

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

func stamp(t *testing.T, version, commit, branch, buildTime string) {
	t.Helper()
	orig := [4]string{Version, GitCommit, GitBranch, BuildTime}
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime = orig[0], orig[1], orig[2], orig[3]
	})
	Version, GitCommit, GitBranch, BuildTime = version, commit, branch, buildTime
}

func TestGetStamped(t *testing.T) {
	stamp(t, "1.2.0", "3f2a9c1d8e", "main", "2026-01-02T15:04:05Z")

	info := Get()
	if info.Version != "1.2.0" || info.GitCommit != "3f2a9c1d8e" {
		t.Errorf("unexpected info %+v", info)
	}
	if want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC); !info.BuildDate.Equal(want) {
		t.Errorf("BuildDate = %v, want %v", info.BuildDate, want)
	}
	if info.GoVersion != runtime.Version() || info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("unexpected runtime info %+v", info)
	}
}

func TestGetInvalidBuildTime(t *testing.T) {
	stamp(t, "1.2.0", "abc", "", "yesterday")
	// test binaries carry no VCS stamp to fall back to
	if info := Get(); !info.BuildDate.IsZero() {
		t.Errorf("unexpected build date %v", info.BuildDate)
	}
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0", Dirty: true}, false},
		{Info{Version: "1.0.0-dirty"}, false},
	}
	for _, tc := range tests {
		if got := tc.info.IsRelease(); got != tc.want {
			t.Errorf("%+v.IsRelease() = %v, want %v", tc.info, got, tc.want)
		}
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "3f2a9c1d8e"}, "1.0.0-3f2a9c1"},
		{Info{Version: "1.0.0", GitCommit: "abc", Dirty: true}, "1.0.0-abc-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		GitCommit: "abc",
		GitBranch: "feature/x",
		BuildDate: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		GoVersion: "go1.26.0",
		Platform:  "linux/amd64",
	}
	want := "1.0.0-abc [feature/x] (built 2026-01-02T15:04:05Z, go1.26.0 linux/amd64)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	info.GitBranch = "main"
	info.BuildDate = time.Time{}
	if got := info.String(); strings.Contains(got, "main") || strings.Contains(got, "built") {
		t.Errorf("main branch and zero date should be omitted, got %q", got)
	}
}
