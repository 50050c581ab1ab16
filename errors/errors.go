package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseAcquire Phase = "acquire" // guard acquire
	PhaseRelease Phase = "release" // guard release
	PhaseCreate  Phase = "create"  // store create
	PhaseDestroy Phase = "destroy" // store destroy
	PhaseProbe   Phase = "probe"   // store existence probe
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseStore   Phase = "store"   // store lifecycle (open/close)
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidKey        Kind = "invalid_key"
	KindInvalidDescriptor Kind = "invalid_descriptor"
	KindUnmatchedRelease  Kind = "unmatched_release"
	KindNotFound          Kind = "not_found"
	KindAlreadyExists     Kind = "already_exists"
	KindClosed            Kind = "closed"
	KindInvalidConfig     Kind = "invalid_config"
	KindStoreFault        Kind = "store_fault"
)

// Error is the structured error type used throughout modguard
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Key    string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Key != "" {
		b.WriteString(" key ")
		b.WriteString(fmt.Sprintf("%q", e.Key))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && e.Phase != t.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Key sets the resource key
func (b *Builder) Key(key string) *Builder {
	b.err.Key = key
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Kind-only targets for errors.Is, matching any phase.
var (
	ErrInvalidKey        = &Error{Kind: KindInvalidKey}
	ErrInvalidDescriptor = &Error{Kind: KindInvalidDescriptor}
	ErrUnmatchedRelease  = &Error{Kind: KindUnmatchedRelease}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrClosed            = &Error{Kind: KindClosed}
	ErrInvalidConfig     = &Error{Kind: KindInvalidConfig}
	ErrStoreFault        = &Error{Kind: KindStoreFault}
)

// Convenience constructors for common error patterns

// InvalidKey creates an invalid key error
func InvalidKey(phase Phase, key, reason string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidKey,
		Key:    key,
		Detail: reason,
		Value:  key,
	}
}

// InvalidDescriptor creates an error for a descriptor the store cannot use
func InvalidDescriptor(key string, desc any, want string) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindInvalidDescriptor,
		Key:    key,
		Detail: fmt.Sprintf("descriptor %T, want %s", desc, want),
		Value:  desc,
	}
}

// UnmatchedRelease creates an error describing a release without a matching acquire
func UnmatchedRelease(key string) *Error {
	return &Error{
		Phase:  PhaseRelease,
		Kind:   KindUnmatchedRelease,
		Key:    key,
		Detail: "no outstanding acquisition",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, key string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Key:    key,
		Detail: "resource not present in store",
	}
}

// AlreadyExists creates an error for a create against an occupied key
func AlreadyExists(key string, cause error) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindAlreadyExists,
		Key:    key,
		Detail: "resource already present in store",
		Cause:  cause,
	}
}

// Closed creates an error for operations on a closed store
func Closed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: "store closed",
	}
}

// InvalidConfig creates a configuration error
func InvalidConfig(detail string, args ...any) *Error {
	return New(PhaseConfig, KindInvalidConfig).Detail(detail, args...).Build()
}

// StoreFault wraps a backend failure
func StoreFault(phase Phase, key string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindStoreFault,
		Key:   key,
		Cause: cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
