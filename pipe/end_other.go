//go:build !unix && !windows

package pipe

import "errors"

func sysRead(fd uintptr, p []byte) (int, error)  { return 0, errors.ErrUnsupported }
func sysWrite(fd uintptr, p []byte) (int, error) { return 0, errors.ErrUnsupported }
func sysClose(fd uintptr) error                  { return errors.ErrUnsupported }
func sysCloseOnExec(fd uintptr) error            { return errors.ErrUnsupported }
func isBrokenPipe(err error) bool                { return false }
