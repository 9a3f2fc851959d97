//go:build linux || freebsd || netbsd || openbsd || dragonfly || solaris || illumos

package pipe

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// newPair allocates both ends with O_CLOEXEC in one call so that no
// concurrent spawn can inherit them before the launcher decides which end
// goes to the child.
func newPair(kind Kind) (*End, *End, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return nil, nil, err
	}
	return newEnd(uintptr(p[0]), fmt.Sprintf("|%d", p[0])),
		newEnd(uintptr(p[1]), fmt.Sprintf("|%d", p[1])), nil
}
