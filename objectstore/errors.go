package objectstore

import "fmt"

// ErrorCode classifies objectstore failures, the same narrow Kind-table
// convention every storage package in this module follows.
type ErrorCode string

const (
	// IoError wraps an underlying S3 or local cache error.
	IoError ErrorCode = "IO_ERROR"
	// InvalidConfig marks a Config that failed ValidateConfig.
	InvalidConfig ErrorCode = "INVALID_CONFIG"
	// HashMismatch marks an object whose bytes no longer hash to the key
	// it was stored under (post-hoc corruption, or a foreign object placed
	// directly in the bucket under a content-addressed key).
	HashMismatch ErrorCode = "HASH_MISMATCH"
)

// Error is this package's error type, in the consensus/errors.go
// ErrorCode+struct convention.
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
