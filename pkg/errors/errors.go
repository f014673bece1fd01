package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so wrapped clones still match
// their predefined sentinel.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrInvalidScope     = New("INVALID_SCOPE", http.StatusBadRequest, "audience or tenant scope is required")
	ErrStoreUnavailable = New("STORE_UNAVAILABLE", http.StatusServiceUnavailable, "persistent store unavailable")
	ErrCacheUnavailable = New("CACHE_UNAVAILABLE", http.StatusServiceUnavailable, "cache store unavailable")
	ErrDeadlineExceeded = New("DEADLINE_EXCEEDED", http.StatusGatewayTimeout, "request deadline exceeded")
	ErrCacheMiss        = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// StoreError classifies a failed store call. Context expiry and cancellation
// become ErrDeadlineExceeded, anything else ErrStoreUnavailable. The cause stays
// reachable through errors.Is.
func StoreError(err error, message string) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) && (typed.Code == ErrDeadlineExceeded.Code || typed.Code == ErrStoreUnavailable.Code) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(err, ErrDeadlineExceeded.Code, ErrDeadlineExceeded.Status, message)
	}
	return Wrap(err, ErrStoreUnavailable.Code, ErrStoreUnavailable.Status, message)
}

// CacheError marks a cache store failure.
func CacheError(err error, message string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, ErrCacheUnavailable.Code, ErrCacheUnavailable.Status, message)
}
