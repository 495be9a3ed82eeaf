package scraper

import (
	"errors"
	"fmt"
)

// Code classifies pipeline and query failures for callers.
type Code string

// Failure codes surfaced by the scrape and list entrypoints.
const (
	CodeUnauthenticated  Code = "unauthenticated"
	CodePermissionDenied Code = "permission-denied"
	CodeFetchFailed      Code = "fetch-failed"
	CodeStorage          Code = "storage"
	CodeInternal         Code = "internal"
)

// Error is a typed failure carrying a caller-safe message. The original
// cause is retained for logging via Unwrap but is not part of the message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// NewError constructs a typed failure. cause may be nil.
func NewError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// CodeOf extracts the failure code from err, defaulting to CodeInternal for
// unclassified errors and "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-safe message from err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	return "internal error"
}

// StorageReason distinguishes storage failure modes.
type StorageReason string

// Storage failure reasons.
const (
	StorageUnavailable StorageReason = "unavailable"
	StorageMalformed   StorageReason = "malformed"
)

// StorageError reports a failed store operation. A whole upsert batch fails
// with a single StorageError; no partial-commit state is exposed.
type StorageError struct {
	Reason StorageReason
	cause  error
}

// NewStorageError wraps cause with a storage reason code.
func NewStorageError(reason StorageReason, cause error) *StorageError {
	return &StorageError{Reason: reason, cause: cause}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Reason, e.cause)
}

func (e *StorageError) Unwrap() error { return e.cause }

// StorageReasonOf returns the reason code if err is a StorageError.
func StorageReasonOf(err error) (StorageReason, bool) {
	var typed *StorageError
	if errors.As(err, &typed) {
		return typed.Reason, true
	}
	return "", false
}
