package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind categorizes the failure
type Kind string

const (
	KindNullHandle       Kind = "null_handle"       // adopted a null pointer
	KindNoContext        Kind = "no_context"        // no current V8 context on this thread
	KindPostFailed       Kind = "post_failed"       // task could not be queued
	KindValueCreation    Kind = "value_creation"    // runtime refused to create a value
	KindStringConversion Kind = "string_conversion" // UTF-16 conversion failed
	KindExecution        Kind = "execution"         // function call produced no result
	KindEncode           Kind = "encode"            // payload serialization failed
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Kind   Kind
	Op     string // operation that failed, e.g. "execute_function"
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(e.Op)
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

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

// Is reports whether target matches this error. Two bridge errors match
// when their kinds match, regardless of operation.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(kind Kind) *Builder {
	return &Builder{
		err: Error{Kind: kind},
	}
}

// Op sets the failing operation
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
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

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NullHandle reports adoption of a null pointer
func NullHandle(op string) *Error {
	return &Error{
		Kind:   KindNullHandle,
		Op:     op,
		Detail: "received a null pointer",
	}
}

// NoContext reports that the calling thread has no current V8 context
func NoContext(op string) *Error {
	return &Error{
		Kind:   KindNoContext,
		Op:     op,
		Detail: "no V8 context is current on this thread",
	}
}

// PostFailed reports that a task could not be handed to the scheduler
func PostFailed(op, detail string) *Error {
	return &Error{
		Kind:   KindPostFailed,
		Op:     op,
		Detail: detail,
	}
}

// ValueCreation reports that the runtime refused to create a value
func ValueCreation(op, what string) *Error {
	return &Error{
		Kind:   KindValueCreation,
		Op:     op,
		Detail: fmt.Sprintf("could not create %s value", what),
	}
}

// StringConversion reports a failed UTF-16 conversion
func StringConversion(op string) *Error {
	return &Error{
		Kind:   KindStringConversion,
		Op:     op,
		Detail: "UTF-16 string conversion failed",
	}
}

// Execution reports a function call that produced neither a value nor an
// exception
func Execution(op, detail string) *Error {
	return &Error{
		Kind:   KindExecution,
		Op:     op,
		Detail: detail,
	}
}

// Encode wraps a payload serialization failure
func Encode(op string, cause error) *Error {
	return &Error{
		Kind:   KindEncode,
		Op:     op,
		Detail: "payload serialization failed",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with bridge context
func Wrap(kind Kind, op string, cause error, detail string) *Error {
	return &Error{
		Kind:   kind,
		Op:     op,
		Detail: detail,
		Cause:  cause,
	}
}

// IsKind reports whether err or any error in its chain is a bridge error
// of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ScriptError carries the details of an exception thrown by script. It is
// produced when a function call returns null with an exception pending,
// or when evaluation fails.
type ScriptError struct {
	Message            string
	ScriptResourceName string
	Line               int32
	StartColumn        int32
}

// Error implements the error interface
func (e *ScriptError) Error() string {
	var b strings.Builder
	b.WriteString("script exception")
	if e.ScriptResourceName != "" {
		fmt.Fprintf(&b, " at %s:%d:%d", e.ScriptResourceName, e.Line, e.StartColumn)
	} else if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d:%d", e.Line, e.StartColumn)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *ScriptError) Is(target error) bool {
	_, ok := target.(*ScriptError)
	return ok
}
