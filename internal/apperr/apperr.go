// Package apperr defines the error categories shared by the ledger services.
// Callers classify failures with errors.Is against the sentinel values.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input. No write happened.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden marks a reference to an entity owned by someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStore marks a persistence failure.
	ErrStore = errors.New("store failure")
	// ErrExternal marks a failure of an external service (AI, blob storage).
	ErrExternal = errors.New("external service failure")
)

type wrapped struct {
	kind error
	msg  string
	err  error
}

func (e *wrapped) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *wrapped) Is(target error) bool {
	return target == e.kind
}

func (e *wrapped) Unwrap() error {
	return e.err
}

func Validation(format string, args ...any) error {
	return &wrapped{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &wrapped{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity, e.g. NotFound("account", id).
func NotFound(entity string, id any) error {
	return &wrapped{kind: ErrNotFound, msg: fmt.Sprintf("%s %v not found", entity, id)}
}

// Store wraps a persistence error with the operation that failed.
// Errors that already carry a category are returned with context only.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &wrapped{kind: ErrStore, msg: op, err: err}
}

// External wraps an error from a third-party service.
func External(service string, err error) error {
	if err == nil {
		return nil
	}
	return &wrapped{kind: ErrExternal, msg: service, err: err}
}

// Classified reports whether err already belongs to one of the categories.
func Classified(err error) bool {
	for _, kind := range []error{ErrValidation, ErrForbidden, ErrNotFound, ErrStore, ErrExternal} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
