package process

import goerrors "github.com/kbukum/procpipe/errors"

// Sentinels for errors.Is. Every error returned by this package that belongs
// to one of these kinds is an *errors.AppError carrying the same code.
var (
	ErrPipeCreation    = goerrors.New(goerrors.ErrCodePipeCreation, "pipe creation failed")
	ErrSpawn           = goerrors.New(goerrors.ErrCodeSpawn, "spawn failed")
	ErrDirectoryChange = goerrors.New(goerrors.ErrCodeDirectoryChange, "directory change failed")
	ErrNotRedirected   = goerrors.New(goerrors.ErrCodeNotRedirected, "stream not redirected")
	ErrNotExited       = goerrors.New(goerrors.ErrCodeNotExited, "process has not exited")
)

// ExitCodeSignaled is reported for a process that did not exit on its own,
// for example one terminated by a signal.
const ExitCodeSignaled = -1
