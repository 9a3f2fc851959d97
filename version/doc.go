// Package version reports the build of the running binary.
//
// Release builds stamp it through -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/procpipe/version.Version=1.2.0" ./cmd/procrun
//
// Unstamped builds fall back to the module version and VCS data recorded by
// the Go toolchain.
package version
