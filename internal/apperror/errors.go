// Package apperror defines the error taxonomy shared by services and handlers.
// Services return these values unchanged; only the HTTP layer turns them into
// status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindRouting
	KindNotFound
	KindForbidden
	KindInvalidState
	KindUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRouting:
		return "routing"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

type AppError struct {
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches any AppError of the same kind, so errors.Is(err, ErrRouting) works
// regardless of the message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrRouting      = &AppError{Kind: KindRouting}
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrForbidden    = &AppError{Kind: KindForbidden}
	ErrInvalidState = &AppError{Kind: KindInvalidState}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrConflict     = &AppError{Kind: KindConflict}
)

func New(kind Kind, statusCode int, message string) *AppError {
	return &AppError{Kind: kind, StatusCode: statusCode, Message: message}
}

func NewValidationError(format string, args ...any) *AppError {
	return New(KindValidation, http.StatusUnprocessableEntity, fmt.Sprintf(format, args...))
}

func NewRoutingError(message string) *AppError {
	return New(KindRouting, http.StatusBadRequest, message)
}

func NewNotFoundError(format string, args ...any) *AppError {
	return New(KindNotFound, http.StatusNotFound, fmt.Sprintf(format, args...))
}

func NewForbiddenError(message string) *AppError {
	return New(KindForbidden, http.StatusForbidden, message)
}

// NewInvalidStateError names the current state so callers can tell
// "already approved" from "already rejected".
func NewInvalidStateError(action, currentStatus string) *AppError {
	return New(KindInvalidState, http.StatusBadRequest,
		fmt.Sprintf("Cannot %s: request is already %s", action, currentStatus))
}

func NewUnauthorizedError(message string) *AppError {
	return New(KindUnauthorized, http.StatusUnauthorized, message)
}

func NewConflictError(format string, args ...any) *AppError {
	return New(KindConflict, http.StatusConflict, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
