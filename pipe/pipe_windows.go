//go:build windows

package pipe

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// newPair creates an inheritable pipe and immediately clears inheritance on
// the end the parent keeps. The child's end stays inheritable; the launcher
// restricts it to a single child through an explicit handle list.
func newPair(kind Kind) (*End, *End, error) {
	sa := windows.SecurityAttributes{InheritHandle: 1}
	sa.Length = uint32(unsafe.Sizeof(sa))

	var r, w windows.Handle
	if err := windows.CreatePipe(&r, &w, &sa, 0); err != nil {
		return nil, nil, err
	}
	parent := r
	if kind == Stdin {
		parent = w
	}
	if err := windows.SetHandleInformation(parent, windows.HANDLE_FLAG_INHERIT, 0); err != nil {
		windows.CloseHandle(r)
		windows.CloseHandle(w)
		return nil, nil, err
	}
	return newEnd(uintptr(r), fmt.Sprintf("|%#x", uintptr(r))),
		newEnd(uintptr(w), fmt.Sprintf("|%#x", uintptr(w))), nil
}

func sysRead(fd uintptr, p []byte) (int, error) {
	var done uint32
	err := windows.ReadFile(windows.Handle(fd), p, &done, nil)
	return int(done), err
}

func sysWrite(fd uintptr, p []byte) (int, error) {
	var done uint32
	err := windows.WriteFile(windows.Handle(fd), p, &done, nil)
	return int(done), err
}

func sysClose(fd uintptr) error {
	return windows.CloseHandle(windows.Handle(fd))
}

// Inheritance of the parent's end is cleared when the pipe is created.
func sysCloseOnExec(fd uintptr) error {
	return windows.SetHandleInformation(windows.Handle(fd), windows.HANDLE_FLAG_INHERIT, 0)
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, windows.ERROR_BROKEN_PIPE)
}
