package pipe

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// End owns one native pipe descriptor or handle.
//
// Read and Write issue exactly one OS call each; they do not loop on short
// transfers. End is not safe for concurrent Close with Read or Write.
type End struct {
	fd   uintptr
	name string

	once     sync.Once
	closed   atomic.Bool
	closeErr error
}

func newEnd(fd uintptr, name string) *End {
	return &End{fd: fd, name: name}
}

// Fd returns the native descriptor or handle.
func (e *End) Fd() uintptr { return e.fd }

// Name returns a diagnostic name such as "|0" for the pipe's read end.
func (e *End) Name() string { return e.name }

// Closed reports whether Close has been called.
func (e *End) Closed() bool { return e.closed.Load() }

// Read reads up to len(p) bytes with a single OS call. A zero-byte read or a
// peer that has closed its end is reported as io.EOF.
func (e *End) Read(p []byte) (int, error) {
	if e.closed.Load() {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := sysRead(e.fd, p)
	if err != nil {
		if isBrokenPipe(err) {
			return 0, io.EOF
		}
		return n, os.NewSyscallError("read", err)
	}
	if n <= 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes p with a single OS call and returns the count accepted.
func (e *End) Write(p []byte) (int, error) {
	if e.closed.Load() {
		return 0, os.ErrClosed
	}
	n, err := sysWrite(e.fd, p)
	if err != nil {
		return n, os.NewSyscallError("write", err)
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Close releases the descriptor. Only the first call reaches the OS; later
// calls return the first call's result.
func (e *End) Close() error {
	if e == nil {
		return nil
	}
	e.once.Do(func() {
		e.closed.Store(true)
		if err := sysClose(e.fd); err != nil {
			e.closeErr = os.NewSyscallError("close", err)
		}
	})
	return e.closeErr
}

// SetCloseOnExec marks the descriptor so later spawns never inherit it.
func (e *End) SetCloseOnExec() error {
	if e.closed.Load() {
		return os.ErrClosed
	}
	return sysCloseOnExec(e.fd)
}
