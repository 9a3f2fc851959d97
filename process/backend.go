package process

import (
	"errors"
	"io"
	"os"

	goerrors "github.com/kbukum/procpipe/errors"
	"github.com/kbukum/procpipe/pipe"
)

// Backend turns a Config into a running process.
type Backend interface {
	// Spawn starts the process described by cfg. On error nothing is left
	// running and every descriptor allocated for the attempt is closed.
	Spawn(cfg Config) (*Spawned, error)
}

// Native is the backend's reference to one running process.
type Native interface {
	Pid() int
	// Poll reports whether the process has exited without blocking.
	Poll() (exited bool, code int, err error)
	// Wait blocks until the process exits and returns its code.
	Wait() (int, error)
	// Kill requests termination; it does not wait for it.
	Kill(force bool) error
	// Release frees the native reference. It never kills the process.
	Release() error
}

// Spawned is what a Backend hands back: the process and the parent's ends of
// every redirected stream. Streams that were not redirected are nil.
type Spawned struct {
	Process Native
	Stdin   io.WriteCloser
	Stdout  io.ReadCloser
	Stderr  io.ReadCloser
}

// DefaultBackend returns the backend for the platform the binary was built for.
func DefaultBackend() Backend {
	return defaultBackend
}

// stdioPipes holds the channels allocated for one spawn, indexed by the
// child's descriptor number.
type stdioPipes [3]*pipe.Channel

// openPipes allocates a channel for every redirected stream. If any
// allocation fails the ones already made are closed.
func openPipes(cfg Config) (stdioPipes, error) {
	var p stdioPipes
	want := [3]bool{cfg.RedirectStdin, cfg.RedirectStdout, cfg.stderrPiped()}
	for i, on := range want {
		if !on {
			continue
		}
		ch, err := pipe.New(pipe.Kind(i))
		if err != nil {
			_ = p.closeAll()
			return stdioPipes{}, err
		}
		p[i] = ch
	}
	return p, nil
}

// childEnd returns the end destined for slot i, or nil.
func (p *stdioPipes) childEnd(i int) *pipe.End {
	if p[i] == nil {
		return nil
	}
	return p[i].ChildEnd()
}

// closeChildEnds drops the parent's copies of the ends now owned by the child.
func (p *stdioPipes) closeChildEnds() error {
	var errs []error
	for _, ch := range p {
		if ch != nil {
			errs = append(errs, ch.ChildEnd().Close())
		}
	}
	return errors.Join(errs...)
}

func (p *stdioPipes) closeAll() error {
	return pipe.CloseAll(p[0], p[1], p[2])
}

// spawned packages the parent's ends.
func (p *stdioPipes) spawned(proc Native) *Spawned {
	s := &Spawned{Process: proc}
	if p[0] != nil {
		s.Stdin = p[0].ParentEnd()
	}
	if p[1] != nil {
		s.Stdout = p[1].ParentEnd()
	}
	if p[2] != nil {
		s.Stderr = p[2].ParentEnd()
	}
	return s
}

// spawnError classifies a failed process creation. The working directory is
// checked first because both chdir and exec failures surface as one errno.
func spawnError(cfg Config, cause error) error {
	if cfg.Dir != "" {
		fi, err := os.Stat(cfg.Dir)
		if err != nil {
			return goerrors.DirectoryChange(cfg.Dir, err)
		}
		if !fi.IsDir() {
			return goerrors.DirectoryChange(cfg.Dir, cause)
		}
		if err := dirAccessError(cfg.Dir); err != nil {
			return goerrors.DirectoryChange(cfg.Dir, err)
		}
	}
	return goerrors.Spawn(cfg.Program, cause)
}
