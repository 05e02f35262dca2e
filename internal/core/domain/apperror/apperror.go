package apperror

import (
	"errors"
	"fmt"
)

// Kind discriminates the recoverable error categories surfaced by the
// workflows. The HTTP boundary maps kinds to status codes; the event consumer
// treats any error as a reason to withhold acknowledgment.
type Kind string

const (
	KindAuthentication Kind = "AUTHENTICATION"
	KindAuthorization  Kind = "AUTHORIZATION"
	KindUser           Kind = "USER"
	KindUserNotFound   Kind = "USER_NOT_FOUND"
	KindAlreadyActive  Kind = "USER_ALREADY_ACTIVE"
	KindConflict       Kind = "CONFLICT"
	KindUnexpected     Kind = "UNEXPECTED"
)

// Error carries a kind plus a human-readable message. Collaborator failures
// are wrapped so the original cause stays reachable through errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Authorization signals an invalid, expired, consumed or mismatched token.
func Authorization(message string) *Error {
	return New(KindAuthorization, message)
}

// Userf signals a generic account-state violation.
func Userf(format string, args ...any) *Error {
	return New(KindUser, fmt.Sprintf(format, args...))
}

func UserNotFound(doc string) *Error {
	return New(KindUserNotFound, fmt.Sprintf("User with doc %s was not found", doc))
}

func AlreadyActive(doc string) *Error {
	return New(KindAlreadyActive, fmt.Sprintf("User with doc %s is already active", doc))
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Unexpected wraps a collaborator failure that the caller cannot act on
// beyond retrying.
func Unexpected(err error) *Error {
	return Wrap(KindUnexpected, "Unexpected error", err)
}

// KindOf returns the kind carried by err, or KindUnexpected when err does not
// originate from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
