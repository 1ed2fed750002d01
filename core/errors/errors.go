// Package errors provides standardized error types and helpers for the nashville codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrChordSyntax indicates a chord token that matched the grammar but cannot be parsed
	ErrChordSyntax = errors.New("chord syntax error")
	// ErrInvalidKey indicates a requested key name outside the twelve pitch classes
	ErrInvalidKey = errors.New("invalid key")
	// ErrFormatting indicates a chart spacing-rule violation
	ErrFormatting = errors.New("formatting violation")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
)

// ChordSyntaxError reports a chord token with an unparseable body, such as
// a root degree of 0, 8, or 9, or a malformed slash bass. It is fatal to
// the transform of the key that encountered it.
type ChordSyntaxError struct {
	Token  string // Offending chord token, verbatim
	Line   int    // 1-indexed source line number
	Reason string // Human-readable detail
	Err    error  // Underlying error, if any
}

func (e *ChordSyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: invalid chord %q: %s", e.Line, e.Token, e.Reason)
	}
	return fmt.Sprintf("invalid chord %q: %s", e.Token, e.Reason)
}

func (e *ChordSyntaxError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrChordSyntax
}

// InvalidKeyError reports a requested output key that is not one of the
// twelve chromatic pitch classes (or the NNS passthrough name).
type InvalidKeyError struct {
	Name string // Key name as requested
	Err  error  // Underlying error, if any
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: not one of the twelve chromatic pitch classes", e.Name)
}

func (e *InvalidKeyError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidKey
}

// FormattingError reports a spacing-rule violation, such as two chord
// tokens separated by fewer than two spaces. It is a diagnostic only:
// processing continues with the tokenizer's best-effort split.
type FormattingError struct {
	Line    int    // 1-indexed source line number
	Column  int    // 0-indexed byte offset within the line
	Message string // Human-readable detail
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Message)
}

func (e *FormattingError) Unwrap() error {
	return ErrFormatting
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "chart", "render")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Helper functions for creating common errors

// NewChordSyntax creates a ChordSyntaxError
func NewChordSyntax(token string, line int, reason string) *ChordSyntaxError {
	return &ChordSyntaxError{
		Token:  token,
		Line:   line,
		Reason: reason,
	}
}

// NewInvalidKey creates an InvalidKeyError
func NewInvalidKey(name string) *InvalidKeyError {
	return &InvalidKeyError{Name: name}
}

// NewFormatting creates a FormattingError
func NewFormatting(line, column int, message string) *FormattingError {
	return &FormattingError{
		Line:    line,
		Column:  column,
		Message: message,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
