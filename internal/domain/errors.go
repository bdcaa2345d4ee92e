package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so the HTTP adapter can pick a status code and
// the orchestrator can keep the message verbatim.
type Kind string

const (
	KindFetch         Kind = "fetch"
	KindParse         Kind = "parse"
	KindSummarization Kind = "summarization"
	KindMindMap       Kind = "mindmap"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindUnavailable   Kind = "unavailable"
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

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == ""
}

// Kind markers for errors.Is.
var (
	ErrFetch         = &Error{Kind: KindFetch}
	ErrParse         = &Error{Kind: KindParse}
	ErrSummarization = &Error{Kind: KindSummarization}
	ErrMindMap       = &Error{Kind: KindMindMap}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrUnavailable   = &Error{Kind: KindUnavailable}
)

// ErrTerminal is returned by stores when a mutator targets a job that has
// already completed or failed.
var ErrTerminal = errors.New("job already in terminal state")

func newErr(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func FetchError(err error, format string, args ...any) error {
	return newErr(KindFetch, err, format, args...)
}

func ParseError(err error, format string, args ...any) error {
	return newErr(KindParse, err, format, args...)
}

func SummarizationError(format string, args ...any) error {
	return newErr(KindSummarization, nil, format, args...)
}

func MindMapError(format string, args ...any) error {
	return newErr(KindMindMap, nil, format, args...)
}

func NotFoundError(format string, args ...any) error {
	return newErr(KindNotFound, nil, format, args...)
}

func ValidationError(format string, args ...any) error {
	return newErr(KindValidation, nil, format, args...)
}

func ConflictError(format string, args ...any) error {
	return newErr(KindConflict, nil, format, args...)
}

func UnavailableError(format string, args ...any) error {
	return newErr(KindUnavailable, nil, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
