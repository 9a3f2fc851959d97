package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t == nil {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Process lifecycle constructors ---

// PipeCreation creates an error for a pipe the OS could not allocate.
func PipeCreation(stream string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePipeCreation, Message: fmt.Sprintf("Creating pipe of %s failed.", stream),
		Retryable: true, Details: map[string]any{"stream": stream}, Cause: cause,
	}
}

// Spawn creates an error for a program that could not be started.
func Spawn(program string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSpawn, Message: fmt.Sprintf("Creating subprocess %q failed.", program),
		Details: map[string]any{"program": program}, Cause: cause,
	}
}

// DirectoryChange creates an error for a working directory the child could not enter.
func DirectoryChange(dir string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDirectoryChange, Message: fmt.Sprintf("Changing working directory to %q failed.", dir),
		Details: map[string]any{"dir": dir}, Cause: cause,
	}
}

// NotRedirected creates an error for access to a stream that was not piped.
func NotRedirected(stream string) *AppError {
	return &AppError{
		Code: ErrCodeNotRedirected, Message: fmt.Sprintf("No redirection on %s.", stream),
		Details: map[string]any{"stream": stream},
	}
}

// NotExited creates an error for an exit code requested too early.
func NotExited(pid int) *AppError {
	return &AppError{
		Code: ErrCodeNotExited, Message: "Process not exited yet.",
		Details: map[string]any{"pid": pid},
	}
}

// --- Generic constructors ---

// ServiceUnavailable creates an error for an operation refused by a guard.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		Retryable: true, Details: map[string]any{"service": service},
	}
}

// Timeout creates an error for an operation that did not finish in time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long.",
		Retryable: true, Details: map[string]any{"operation": operation},
	}
}

// RateLimited creates an error for an operation refused by a rate limiter.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many operations. Please slow down.",
		Retryable: true,
	}
}

// InvalidInput creates an error for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates an error for failed validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err or any error it wraps is an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
