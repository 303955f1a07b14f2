package blazorpack

import (
	"errors"
	"fmt"
)

// Decoding errors.
var (
	ErrTruncatedVarint     = errors.New("blazorpack: truncated varint length prefix")
	ErrVarintOverflow      = errors.New("blazorpack: varint length prefix overflows uint32")
	ErrMalformedHeader     = errors.New("blazorpack: expected array or map header")
	ErrUnexpectedValueType = errors.New("blazorpack: unexpected value type")
	ErrIncompleteMessage   = errors.New("blazorpack: message is incomplete")
	ErrFrameTooLarge       = errors.New("blazorpack: frame length exceeds limit")
)

// Encoding errors.
var (
	ErrMissingField      = errors.New("blazorpack: missing required field")
	ErrInvalidFieldType  = errors.New("blazorpack: invalid field type")
	ErrInvalidResultKind = errors.New("blazorpack: invalid result kind")
	ErrInvalidJSON       = errors.New("blazorpack: input is not a JSON array of objects")
	ErrNotEncodable      = errors.New("blazorpack: message cannot be encoded")
)

// FieldError reports a structured message that failed validation.
// Err is one of ErrMissingField, ErrInvalidFieldType or ErrInvalidResultKind.
type FieldError struct {
	Variant string // e.g. "CompletionMessage"
	Field   string // JSON key, e.g. "ResultKind"
	Reason  string
	Err     error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("blazorpack: %s %q: %s", e.Variant, e.Field, e.Reason)
}

// Unwrap returns the sentinel for errors.Is support.
func (e *FieldError) Unwrap() error {
	return e.Err
}

func missingField(variant, field string, required []string) *FieldError {
	return &FieldError{
		Variant: variant,
		Field:   field,
		Reason:  fmt.Sprintf("input is missing one of the required keys: %v", required),
		Err:     ErrMissingField,
	}
}

func invalidField(variant, field, want string) *FieldError {
	return &FieldError{
		Variant: variant,
		Field:   field,
		Reason:  "input must be " + want,
		Err:     ErrInvalidFieldType,
	}
}
