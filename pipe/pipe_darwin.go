//go:build darwin

package pipe

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// Darwin has no pipe2; the fork lock keeps a concurrent fork from observing
// the descriptors between pipe and fcntl.
func newPair(kind Kind) (*End, *End, error) {
	var p [2]int
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	if err := unix.Pipe(p[:]); err != nil {
		return nil, nil, err
	}
	unix.CloseOnExec(p[0])
	unix.CloseOnExec(p[1])
	return newEnd(uintptr(p[0]), fmt.Sprintf("|%d", p[0])),
		newEnd(uintptr(p[1]), fmt.Sprintf("|%d", p[1])), nil
}
