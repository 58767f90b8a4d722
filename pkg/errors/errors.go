// Package errors provides structured errors with codes and fields for the
// chack-tools packages. Errors carry a machine-readable code plus optional
// key/value fields so callers can log and branch without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Code classifies an error for programmatic handling.
type Code int

const (
	Unknown Code = iota
	InvalidInput
	InvalidResponse
	ResourceNotFound
	MissingAPIKey
	RateLimited
	Timeout
	ExecutionFailed
	LLMGenerationFailed
)

func (c Code) String() string {
	switch c {
	case InvalidInput:
		return "invalid_input"
	case InvalidResponse:
		return "invalid_response"
	case ResourceNotFound:
		return "resource_not_found"
	case MissingAPIKey:
		return "missing_api_key"
	case RateLimited:
		return "rate_limited"
	case Timeout:
		return "timeout"
	case ExecutionFailed:
		return "execution_failed"
	case LLMGenerationFailed:
		return "llm_generation_failed"
	default:
		return "unknown"
	}
}

// Fields attaches structured context to an error.
type Fields map[string]any

// Error is the concrete error type carrying a code, message, fields and an
// optional wrapped cause.
type Error struct {
	code   Code
	msg    string
	fields Fields
	cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.msg)
	if len(e.fields) > 0 {
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.fields[k]))
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, " "))
		b.WriteString("]")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// ErrorCode returns the error's code.
func (e *Error) ErrorCode() Code { return e.code }

// ErrorFields returns the fields attached to the error.
func (e *Error) ErrorFields() Fields { return e.fields }

// New creates an error with a code and message.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Newf creates an error with a code and formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. Returns nil if err is nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, cause: err}
}

// WithFields attaches fields to err. If err is not an *Error it is wrapped
// with code Unknown first.
func WithFields(err error, fields Fields) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !stderrors.As(err, &e) {
		e = &Error{code: Unknown, msg: err.Error(), cause: err}
	}
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Error{code: e.code, msg: e.msg, fields: merged, cause: e.cause}
}

// CodeOf extracts the code from err, or Unknown for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.code
	}
	return Unknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
