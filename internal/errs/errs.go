// Package errs defines the closed set of error kinds produced while
// constructing a build tree. Every failure surfaced to callers is one of
// these kinds, carrying the variant and subject identifiers it relates to.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a build-tree failure.
type Kind int

const (
	// KindConfig covers malformed environment descriptors and missing
	// configuration files.
	KindConfig Kind = iota
	// KindFetch covers source repository clone/checkout/patch failures.
	KindFetch
	// KindRender covers recipe metadata rendering failures.
	KindRender
	// KindCycle covers fatal dependency cycles.
	KindCycle
	// KindResolve covers remote package channel query failures.
	KindResolve
	// KindInternal covers unexpected failures escaping a unit of work.
	KindInternal
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindFetch:
		return "fetch"
	case KindRender:
		return "render"
	case KindCycle:
		return "cycle"
	case KindResolve:
		return "resolve"
	default:
		return "internal"
	}
}

// Error is a classified build-tree error. Variant and Subjects are optional
// context; Subjects holds the feedstock or package names involved.
type Error struct {
	Kind     Kind
	Variant  string
	Subjects []string

	msg string
	err error
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// WithVariant attaches the variant key the error occurred under.
func (e *Error) WithVariant(key string) *Error {
	e.Variant = key
	return e
}

// WithSubjects attaches the feedstock or package names involved.
func (e *Error) WithSubjects(names ...string) *Error {
	e.Subjects = append(e.Subjects, names...)
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Variant != "" {
		fmt.Fprintf(&b, " [%s]", e.Variant)
	}
	b.WriteString(": ")
	b.WriteString(e.msg)
	if len(e.Subjects) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Subjects, ", "))
	}
	if e.err != nil {
		fmt.Fprintf(&b, ": %v", e.err)
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
