package kvstore

import "fmt"

// ErrorCode classifies kvstore failures, the same narrow Kind-table
// convention every storage package in this module follows.
type ErrorCode string

const (
	// IoError wraps an underlying bbolt/filesystem error.
	IoError ErrorCode = "IO_ERROR"
	// InvalidConfig marks a Config that failed ValidateConfig.
	InvalidConfig ErrorCode = "INVALID_CONFIG"
	// HashMismatch marks a stored blob whose bytes no longer hash to the
	// key it was stored under (post-hoc corruption).
	HashMismatch ErrorCode = "HASH_MISMATCH"
)

// Error is this package's error type: a stable ErrorCode paired with a
// message and optional wrapped cause.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
