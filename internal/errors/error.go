package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryCodec   Category = "codec"
	CategoryProxy   Category = "proxy"
	CategoryArchive Category = "archive"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Input identifies the input an error concerns.
type Input struct {
	Name   string
	Offset int // byte offset, or -1 when unknown
}

// String returns the input as a formatted string.
func (in *Input) String() string {
	if in == nil {
		return ""
	}
	if in.Offset >= 0 {
		return fmt.Sprintf("%s @ byte %d", in.Name, in.Offset)
	}
	return in.Name
}

// BTPError is a structured error with a registered code.
type BTPError struct {
	// Code is a unique error identifier (e.g., "E141").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Input is the file or stream the error concerns.
	Input *Input

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *BTPError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *BTPError) Unwrap() error {
	return e.Wrapped
}

// WithInput records the input name and byte offset (-1 if unknown).
func (e *BTPError) WithInput(name string, offset int) *BTPError {
	e.Input = &Input{Name: name, Offset: offset}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *BTPError) WithSuggestion(s string) *BTPError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *BTPError) WithDetail(d string) *BTPError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *BTPError) Wrap(err error) *BTPError {
	e.Wrapped = err
	return e
}

// New creates a BTPError from a registered error code.
func New(code string) *BTPError {
	template, ok := registry[code]
	if !ok {
		return &BTPError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &BTPError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new BTPError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *BTPError {
	return &BTPError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a BTPError.
func FromError(err error, code string) *BTPError {
	if err == nil {
		return nil
	}
	if be, ok := err.(*BTPError); ok {
		return be
	}
	return New(code).Wrap(err)
}
