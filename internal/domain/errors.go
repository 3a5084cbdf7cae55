// Package domain holds the error taxonomy shared by the store and service
// layers (spec §7), plus the entity types the repositories and services
// operate on. Kinds are not language exception types — they're coarse tags a
// later HTTP collaborator maps to status codes.
package domain

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	KindDuplicate    Kind = "DUPLICATE"
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindAmbiguous    Kind = "AMBIGUOUS_NAME"
	KindCannotShrink Kind = "CANNOT_SHRINK"
	KindConstraint   Kind = "CONSTRAINT"
	KindDbBusy       Kind = "DB_BUSY"
	KindAuth         Kind = "AUTH"
	KindDB           Kind = "DB"
)

// Error is the common shape for every domain-level failure raised by a
// repository or service.
type Error struct {
	Kind   Kind
	Detail string
	Err    error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match any *Error target with the same Kind, so
// errors.Is(err, domain.Sentinel(domain.KindNotFound)) works; a target that
// is not an *Error never matches.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// Sentinel returns an *Error carrying only a Kind, useful as the target of
// errors.Is checks: errors.Is(err, domain.Sentinel(domain.KindNotFound)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// IsKind reports whether err is a domain.Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
