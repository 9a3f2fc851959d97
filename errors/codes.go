package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Process lifecycle errors
const (
	// ErrCodePipeCreation indicates the OS refused to allocate a pipe.
	ErrCodePipeCreation ErrorCode = "PIPE_CREATION_FAILED"
	// ErrCodeSpawn indicates the child process could not be created or the
	// program image could not be loaded into it.
	ErrCodeSpawn ErrorCode = "SPAWN_FAILED"
	// ErrCodeDirectoryChange indicates the child could not enter its working directory.
	ErrCodeDirectoryChange ErrorCode = "DIRECTORY_CHANGE_FAILED"
	// ErrCodeNotRedirected indicates a stream was requested that was not piped.
	ErrCodeNotRedirected ErrorCode = "NOT_REDIRECTED"
	// ErrCodeNotExited indicates an exit code was requested from a live process.
	ErrCodeNotExited ErrorCode = "NOT_EXITED"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a guarded operation is temporarily refused.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation did not finish in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates too many operations were attempted too quickly.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodePipeCreation:       true,
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeSpawn:              false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
