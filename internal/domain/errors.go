package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure by the stage that produced it.
// Findings are not errors; an ErrorKind always means the run could not
// complete, as opposed to "the run completed and found violations".
type ErrorKind int

const (
	// KindConfiguration marks invalid or conflicting configuration,
	// detected eagerly before any fetch or generation work.
	KindConfiguration ErrorKind = iota
	// KindResolution marks a named version or revision that cannot be
	// resolved against its source.
	KindResolution
	// KindFetch marks a failed network or source-control operation.
	KindFetch
	// KindGeneration marks an external snapshot generator failure.
	KindGeneration
	// KindFormat marks a malformed snapshot document.
	KindFormat
	// KindInternal marks a defect in relcheck itself, e.g. an inconsistent
	// rule catalog. Always fatal.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindResolution:
		return "resolution error"
	case KindFetch:
		return "fetch error"
	case KindGeneration:
		return "generation error"
	case KindFormat:
		return "format error"
	case KindInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// Error is a classified pipeline error. It wraps an underlying cause so the
// usual errors.Is/errors.As chains keep working.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error. The format string may wrap a cause
// with %w.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the classification of err, if it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
