// Package apperr defines the error taxonomy shared by the workflow usecases
// and mapped to transport responses by the HTTP adapter.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindInvalidTransition Kind = "invalid_transition"
	KindAuthorization     Kind = "authorization"
	KindPrecondition      Kind = "precondition"
	KindConfiguration     Kind = "configuration"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
)

// Kind sentinels; errors.Is(err, ErrAuthorization) matches any *Error of that kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrAuthorization     = &Error{Kind: KindAuthorization}
	ErrPrecondition      = &Error{Kind: KindPrecondition}
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches on Kind so callers can compare against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ErrorKind lets classifiers outside this package read the kind without importing it.
func (e *Error) ErrorKind() string { return string(e.Kind) }

func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func InvalidTransition(msg string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: msg}
}

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func Precondition(msg string) *Error {
	return &Error{Kind: KindPrecondition, Message: msg}
}

func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", what)}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// KindOf returns the taxonomy kind of err, or "" for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// FieldsOf returns structured field errors carried by err, if any.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
