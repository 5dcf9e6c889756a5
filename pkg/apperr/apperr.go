package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping. The four kinds mirror the
// failure modes the core can produce: bad input, a lost race, a broken
// downstream collaborator, and a missing record.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindDependency
	KindNotFound
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func Dependency(msg string, err error) error {
	return &Error{Kind: KindDependency, Msg: msg, Err: err}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// IsKind reports whether err or anything it wraps carries the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

func IsConflict(err error) bool   { return IsKind(err, KindConflict) }
func IsNotFound(err error) bool   { return IsKind(err, KindNotFound) }
func IsValidation(err error) bool { return IsKind(err, KindValidation) }
func IsDependency(err error) bool { return IsKind(err, KindDependency) }
