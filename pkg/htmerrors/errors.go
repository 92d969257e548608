// Package htmerrors provides structured error handling for htm with error
// categorization, key-value context and stack traces.
//
// # Overview
//
// Errors fall in two families:
//   - Load-time errors (construction, unit, config, file, data) are fatal and
//     halt the loader that produced them. Bad literal data is a data-entry bug.
//   - Query-time conditions (out_of_range, empty_result) are recoverable.
//     They are reported alongside a best-effort result and never abort batch
//     evaluation.
//
// # Basic Usage
//
//	err := htmerrors.New(htmerrors.ErrorTypeConstruction, "table lengths differ").
//	    WithDetail("data_t", len(t)).
//	    WithDetail("data_y", len(y))
//
//	if htmerrors.IsType(err, htmerrors.ErrorTypeUnit) {
//	    // wrong unit supplied for the property kind
//	}
package htmerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	// ErrorTypeConstruction represents a malformed property record
	ErrorTypeConstruction ErrorType = "construction"
	// ErrorTypeUnit represents a unit that is dimensionally incompatible
	ErrorTypeUnit ErrorType = "unit"
	// ErrorTypeOutOfRange represents an evaluation outside the validity range
	ErrorTypeOutOfRange ErrorType = "out_of_range"
	// ErrorTypeEmptyResult represents a query that matched nothing
	ErrorTypeEmptyResult ErrorType = "empty_result"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file and object storage errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeData represents malformed input data
	ErrorTypeData ErrorType = "data"
	// ErrorTypeNotFound represents resource not found errors
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeStorage represents persistence errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeExport represents errors writing exported data
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. Calls can be chained.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, capturing the
// call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with fmt-style formatting of the message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context. If the error is
// already a structured Error its stack trace is preserved. Returns nil if
// err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if any error in the chain is of the given type.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Cause
	}
	return false
}

// IsFatal reports whether err must halt the operation that produced it.
// Out-of-range evaluations and empty query results are recoverable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return true
	}

	switch e.Type {
	case ErrorTypeOutOfRange, ErrorTypeEmptyResult:
		return false
	case ErrorTypeConstruction, ErrorTypeUnit, ErrorTypeConfig, ErrorTypeFile,
		ErrorTypeData, ErrorTypeNotFound, ErrorTypeStorage, ErrorTypeExport,
		ErrorTypeInternal:
		return true
	default:
		return true
	}
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
