//go:build unix

package pipe

import (
	"errors"

	"golang.org/x/sys/unix"
)

func sysRead(fd uintptr, p []byte) (int, error) {
	for {
		n, err := unix.Read(int(fd), p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func sysWrite(fd uintptr, p []byte) (int, error) {
	for {
		n, err := unix.Write(int(fd), p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func sysClose(fd uintptr) error {
	return unix.Close(int(fd))
}

func sysCloseOnExec(fd uintptr) error {
	_, err := unix.FcntlInt(fd, unix.F_SETFD, unix.FD_CLOEXEC)
	return err
}

// Reads never see EPIPE; a write to a pipe without readers does and is
// surfaced to the caller as an error.
func isBrokenPipe(err error) bool {
	return false
}
