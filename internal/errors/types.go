// Package errors provides structured error types for the template
// compilation pipeline, with a fatal/warning split: fatal errors abort a
// compilation, warnings are collected and returned alongside the result.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeParse  ErrorType = "parse"
	ErrorTypeLimit  ErrorType = "limit"
	ErrorTypeRender ErrorType = "render"
	ErrorTypeConfig ErrorType = "config"
)

// Error codes used across the pipeline.
const (
	CodeUnterminatedTag = "unterminated_tag"
	CodeInvalidNesting  = "invalid_nesting"
	CodeDisallowedTag   = "disallowed_tag"
	CodeNodeLimit       = "node_limit_exceeded"
	CodeIslandLimit     = "island_limit_exceeded"
	CodeUnknownMode     = "unknown_mode"
	CodeInvalidConfig   = "invalid_config"
	CodeRenderFailed    = "render_failed"
)

// SteadError is a structured error with compilation context.
type SteadError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Component   string
	Line        int
	Column      int
	Recoverable bool
}

// Error implements the error interface.
func (e *SteadError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.Line > 0 {
		location := fmt.Sprintf("line %d", e.Line)
		if e.Column > 0 {
			location += fmt.Sprintf(":%d", e.Column)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SteadError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *SteadError) Is(target error) bool {
	var t *SteadError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithLocation adds source location information.
func (e *SteadError) WithLocation(line, column int) *SteadError {
	e.Line = line
	e.Column = column

	return e
}

// WithComponent adds component context.
func (e *SteadError) WithComponent(component string) *SteadError {
	e.Component = component

	return e
}

// WithCause attaches the underlying cause.
func (e *SteadError) WithCause(cause error) *SteadError {
	e.Cause = cause

	return e
}

// NewParseError creates a fatal template syntax error.
func NewParseError(code, message string) *SteadError {
	return &SteadError{
		Type:    ErrorTypeParse,
		Code:    code,
		Message: message,
	}
}

// NewLimitError creates a fatal resource limit error.
func NewLimitError(code, message string) *SteadError {
	return &SteadError{
		Type:    ErrorTypeLimit,
		Code:    code,
		Message: message,
	}
}

// NewRenderError creates a recoverable per-component render error.
func NewRenderError(code, message string) *SteadError {
	return &SteadError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewConfigError creates a fatal configuration error.
func NewConfigError(code, message string) *SteadError {
	return &SteadError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// IsFatal reports whether err should abort a compilation. Structured errors
// declare recoverability themselves; anything unstructured is fatal.
func IsFatal(err error) bool {
	var se *SteadError
	if errors.As(err, &se) {
		return !se.Recoverable
	}
	return err != nil
}
