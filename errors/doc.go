// Package errors provides the coded error type shared by every procpipe
// package.
//
// Each failure kind carries a machine-readable ErrorCode, a human-readable
// message and a retryable flag. Two AppErrors with the same code match under
// errors.Is, so callers can test against package-level sentinels without
// caring about the message or cause.
package errors
