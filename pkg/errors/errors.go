package errors

import (
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

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. ErrConfigInvalid, ErrInfeasible and ErrSearchAborted
// carry the three terminal solve outcomes and must stay pairwise distinct.
var (
	ErrConfigInvalid  = New("CONFIG_INVALID", http.StatusUnprocessableEntity, "dataset configuration is invalid")
	ErrInfeasible     = New("SCHEDULE_INFEASIBLE", http.StatusConflict, "no schedule satisfies all constraints")
	ErrSearchAborted  = New("SEARCH_ABORTED", http.StatusRequestTimeout, "search aborted before completion")
	ErrValidation     = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound       = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrNoTimetable    = New("TIMETABLE_NOT_READY", http.StatusNotFound, "no timetable has been generated yet")
	ErrJobNotFound    = New("JOB_NOT_FOUND", http.StatusNotFound, "solve job not found")
	ErrDatasetMissing = New("DATASET_MISSING", http.StatusNotFound, "dataset has not been loaded")
	ErrCacheMiss      = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrDownloadDenied = New("DOWNLOAD_DENIED", http.StatusForbidden, "download token rejected")
	ErrInternal       = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
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

// Is reports whether err carries the same code as target. It lets callers
// distinguish outcomes (infeasible vs aborted) without comparing pointers.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
