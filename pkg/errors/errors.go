// Package errors provides the unified error type and factory functions for
// SubstanceWatch.  Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the single carrier for structured error
// information, so that row-level data-quality problems can be told apart from
// run-level failures by code alone.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const stackDepth = 32

// captureStack renders the caller's stack, skipping skip frames above it.
// Go runtime frames are dropped.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for n > 0 {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// build is the one constructor behind every factory.  Its caller's caller
// is the first frame of the captured stack.
func build(code ErrorCode, message, detail string, cause error) *AppError {
	if message == "" {
		message = DefaultMessageForCode(code)
	}
	return &AppError{Code: code, Message: message, Detail: detail, Cause: cause, Stack: captureStack(2)}
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError: the canonical error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError carries a code, a message, optional detail such as the offending
// cell, and the wrapped cause.
//
//	return errors.New(errors.ErrCodeInvalidChecksum, "check digit mismatch").WithDetail("50-00-1")
//	return errors.Wrap(err, errors.ErrCodeSourceReadFailure, "open clp.csv")
type AppError struct {
	Code    ErrorCode
	Message string
	Detail  string
	Cause   error
	// Stack is captured at construction and kept out of Error().
	Stack string
}

// Error renders "[code] message: detail (cause)".
func (e *AppError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code.String(), e.Message)
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(" (")
		sb.WriteString(e.Cause.Error())
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy with Detail set.  A nil receiver stays nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy with Cause set.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs an AppError.  An empty message takes the code's default.
func New(code ErrorCode, message string) *AppError {
	return build(code, message, "", nil)
}

// Newf is New with a format string.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return build(code, fmt.Sprintf(format, args...), "", nil)
}

// Wrap attaches code and message to err and returns nil for a nil err.
// CodeUnknown keeps the code of an AppError already in the chain.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return build(code, message, "", err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
//
//	if errors.IsCode(err, errors.ErrCodeConflictingMerge) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// If no *AppError is present, CodeUnknown is returned.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories for the domain error kinds
// ─────────────────────────────────────────────────────────────────────────────

// MalformedIdentifier reports a value that does not match the identifier
// pattern.
func MalformedIdentifier(value string) *AppError {
	return build(ErrCodeMalformedIdentifier, fmt.Sprintf("identifier %q is malformed", value), "", nil)
}

// InvalidChecksum reports a well-formed identifier whose check digit is
// wrong.
func InvalidChecksum(value string, want int) *AppError {
	return build(ErrCodeInvalidChecksum, fmt.Sprintf("check digit of %q is invalid", value),
		fmt.Sprintf("expected check digit %d", want), nil)
}

// ConflictingMerge reports two entities whose identifiers disagree.
func ConflictingMerge(message string) *AppError {
	return build(ErrCodeConflictingMerge, message, "", nil)
}

// SourceRead wraps an I/O or parse failure on the table at path.
func SourceRead(err error, path string) *AppError {
	if err == nil {
		return nil
	}
	return build(ErrCodeSourceReadFailure, "", path, err)
}

// InvalidConfig reports a configuration problem.
func InvalidConfig(message string) *AppError {
	return build(ErrCodeInvalidConfig, message, "", nil)
}

// Internal reports a broken invariant of the program itself.
func Internal(message string) *AppError {
	return build(CodeInternal, message, "", nil)
}

//Personal.AI order the ending
