package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	GitBranch string    `json:"git_branch,omitempty"`
	BuildDate time.Time `json:"build_date,omitzero"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	Dirty     bool      `json:"dirty,omitempty"`
}

// Get returns the build information, filling what ldflags left empty from
// the VCS stamp embedded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		info.BuildDate = t
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if info.BuildDate.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildDate = t
				}
			}
		}
	}
	return info
}

// IsRelease reports whether the binary was built from a tagged, clean tree.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !i.Dirty && !strings.Contains(i.Version, "dirty")
}

func (i Info) shortCommit() string {
	if len(i.GitCommit) > 7 {
		return i.GitCommit[:7]
	}
	return i.GitCommit
}

// Short returns "version[-commit][-dirty]".
func (i Info) Short() string {
	parts := []string{i.Version}
	if c := i.shortCommit(); c != "" {
		parts = append(parts, c)
	}
	if i.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// String returns the line printed by "procrun -version":
//
//	procrun 1.2.0-3f2a9c1 (built 2026-01-02T15:04:05Z, go1.26.0 linux/amd64)
func (i Info) String() string {
	v := i.Short()
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		v += " [" + i.GitBranch + "]"
	}
	details := []string{}
	if !i.BuildDate.IsZero() {
		details = append(details, "built "+i.BuildDate.UTC().Format(time.RFC3339))
	}
	details = append(details, i.GoVersion+" "+i.Platform)
	return fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
}
