// Package errors provides custom error types for the bibmerge system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As re-export the standard library helpers so callers need a
// single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the bibmerge system
var (
	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSelector indicates a key selector names an unknown normalization mode
	ErrInvalidSelector = errors.New("invalid key selector")

	// ErrNonUniqueKeys indicates that keys within a dataset are not unique
	ErrNonUniqueKeys = errors.New("non-unique keys")

	// ErrUnknownFormat indicates an unsupported bibliography file format
	ErrUnknownFormat = errors.New("unknown format")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// SelectorError reports a key selector that cannot be resolved.
type SelectorError struct {
	Selector string
	Known    []string
}

// Error implements the error interface
func (e *SelectorError) Error() string {
	if e.Selector == "" {
		return "invalid key selector: empty selector"
	}
	if len(e.Known) > 0 {
		return fmt.Sprintf("invalid key selector %q: unknown normalization (known: %s)", e.Selector, strings.Join(e.Known, ", "))
	}
	return fmt.Sprintf("invalid key selector %q: unknown normalization", e.Selector)
}

// Is implements errors.Is support
func (e *SelectorError) Is(target error) bool {
	return target == ErrInvalidSelector || target == ErrInvalidInput
}

// NewSelectorError creates a new SelectorError
func NewSelectorError(selector string, known []string) *SelectorError {
	return &SelectorError{Selector: selector, Known: known}
}

// CollisionError reports that a dataset produced duplicate keys.
// It is only returned when a caller opts into strict validation.
type CollisionError struct {
	Dataset string
	Keys    []string
}

// Error implements the error interface
func (e *CollisionError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("dataset %s has %d non-unique keys: %s", e.Dataset, len(e.Keys), strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("%d non-unique keys: %s", len(e.Keys), strings.Join(e.Keys, ", "))
}

// Is implements errors.Is support
func (e *CollisionError) Is(target error) bool {
	return target == ErrNonUniqueKeys
}

// NewCollisionError creates a new CollisionError
func NewCollisionError(dataset string, keys []string) *CollisionError {
	return &CollisionError{Dataset: dataset, Keys: keys}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// MergeError represents an error during dataset merge operations
type MergeError struct {
	Left  string
	Right string
	Err   error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	return fmt.Sprintf("merge error between %s and %s: %v", e.Left, e.Right, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// NewMergeError creates a new MergeError
func NewMergeError(left, right string, err error) *MergeError {
	return &MergeError{
		Left:  left,
		Right: right,
		Err:   err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "yaml", "json", "bibtex"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at line %d: %s", e.Format, e.Line, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidSelector checks if an error is caused by a bad key selector
func IsInvalidSelector(err error) bool {
	return errors.Is(err, ErrInvalidSelector)
}

// IsNonUniqueKeys checks if an error reports key collisions
func IsNonUniqueKeys(err error) bool {
	return errors.Is(err, ErrNonUniqueKeys)
}

// IsUnknownFormat checks if an error reports an unsupported file format
func IsUnknownFormat(err error) bool {
	return errors.Is(err, ErrUnknownFormat)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
