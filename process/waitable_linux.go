//go:build linux

package process

import (
	"errors"

	"golang.org/x/sys/unix"
)

// waitable blocks until pid has exited without reaping it. It reports false
// if the wait could not be made, leaving the caller to find out from wait4.
func waitable(pid int) bool {
	var info unix.Siginfo
	for {
		err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WNOWAIT, nil)
		if err == nil {
			return true
		}
		if !errors.Is(err, unix.EINTR) {
			return false
		}
	}
}
