// Package fault classifies pipeline errors by the stage concern that produced
// them, so the orchestrator can log a failure kind without string matching.
package fault

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Kind identifies the failure taxonomy of a pipeline error.
type Kind string

const (
	Extract   Kind = "extract"
	Schema    Kind = "schema"
	Transform Kind = "transform"
	Load      Kind = "load"
)

// Error tags an underlying error with its Kind. The wrapped error keeps its
// own chain, so errors.Is/As still see the original cause.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

// New creates a tagged error from a message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, err: eris.New(msg)}
}

// Newf creates a tagged error from a format string.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, err: eris.Errorf(format, args...)}
}

// Wrap tags err with kind and a context message. Returns nil for a nil err.
// If err is already tagged, the original kind wins.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		kind = tagged.Kind
	}
	return &Error{Kind: kind, err: eris.Wrap(err, msg)}
}

// Wrapf is Wrap with a format string.
func Wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		kind = tagged.Kind
	}
	return &Error{Kind: kind, err: eris.Wrapf(err, format, args...)}
}

// KindOf reports the Kind of err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
