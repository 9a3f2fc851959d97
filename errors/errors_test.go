package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodePipeCreation, "no descriptors")
	if !err.Retryable {
		t.Error("PIPE_CREATION_FAILED should be retryable")
	}
	if New(ErrCodeSpawn, "x").Retryable {
		t.Error("SPAWN_FAILED should not be retryable")
	}
}

func TestAppError_PipeCreation_Success(t *testing.T) {
	cause := fmt.Errorf("too many open files")
	err := PipeCreation("stdout", cause)
	if err.Code != ErrCodePipeCreation {
		t.Errorf("expected PIPE_CREATION_FAILED, got %s", err.Code)
	}
	if err.Details["stream"] != "stdout" {
		t.Errorf("expected stream=stdout, got %v", err.Details["stream"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
	}{
		{"spawn", Spawn("cat", nil), ErrCodeSpawn},
		{"directory change", DirectoryChange("/nope", nil), ErrCodeDirectoryChange},
		{"not redirected", NotRedirected("stderr"), ErrCodeNotRedirected},
		{"not exited", NotExited(42), ErrCodeNotExited},
		{"service unavailable", ServiceUnavailable("runner"), ErrCodeServiceUnavailable},
		{"timeout", Timeout("wait"), ErrCodeTimeout},
		{"rate limited", RateLimited(), ErrCodeRateLimited},
		{"invalid input", InvalidInput("program", "empty"), ErrCodeInvalidInput},
		{"validation", Validation("bad"), ErrCodeInvalidInput},
		{"internal", Internal(nil), ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestAppError_Is_MatchesByCode(t *testing.T) {
	sentinel := New(ErrCodeNotRedirected, "sentinel")
	err := fmt.Errorf("wrapped: %w", NotRedirected("stdin"))
	if !stderrors.Is(err, sentinel) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(err, New(ErrCodeNotExited, "other")) {
		t.Error("expected different codes not to match")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := NotExited(1).WithDetails(map[string]any{"handle_id": "abc"})
	if err.Details["pid"] != 1 || err.Details["handle_id"] != "abc" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeInternal}
	err.WithDetail("k", "v")
	if err.Details["k"] != "v" {
		t.Error("expected detail to be set on nil map")
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := Spawn("missing", fmt.Errorf("no such file"))
	msg := err.Error()
	if !strings.HasPrefix(msg, "SPAWN_FAILED: ") {
		t.Errorf("unexpected prefix: %q", msg)
	}
	if !strings.Contains(msg, "cause: no such file") {
		t.Errorf("expected cause in message: %q", msg)
	}
}

func TestAsAppError_And_HasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", Spawn("x", nil))
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeSpawn {
		t.Fatalf("expected SPAWN_FAILED AppError, got %v", err)
	}
	if !HasCode(err, ErrCodeSpawn) {
		t.Error("expected HasCode to find SPAWN_FAILED")
	}
	if HasCode(fmt.Errorf("plain"), ErrCodeSpawn) {
		t.Error("plain errors carry no code")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error is not an AppError")
	}
}
