package veil

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNilObject indicates a nil object was passed to Mask.
	ErrNilObject = errors.New("nil object")

	// ErrUnresolvableStrategy indicates a strategy reference could not be
	// resolved to a registered strategy.
	ErrUnresolvableStrategy = errors.New("unresolvable strategy")

	// ErrUnresolvableCondition indicates a condition reference could not be
	// resolved to a registered condition.
	ErrUnresolvableCondition = errors.New("unresolvable condition")

	// ErrFieldAccess indicates a field could not be read or written during
	// traversal, including strategy output that does not fit the field type.
	ErrFieldAccess = errors.New("field access failed")

	// ErrUnsupportedShape indicates masking metadata was attached to a field
	// whose shape has no masking rule (channels, functions).
	ErrUnsupportedShape = errors.New("unsupported shape")

	// ErrInvalidTag indicates a mask tag has an invalid format.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnknownField indicates a field name does not exist on the type.
	ErrUnknownField = errors.New("unknown field")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")
)

// ResolveError represents a metadata resolution failure.
// It wraps a sentinel error with the field and the reference that failed.
type ResolveError struct {
	Err   error  // Underlying sentinel error (ErrUnresolvableStrategy, etc.)
	Field string // Field name that carried the reference
	Ref   string // Strategy or condition reference that failed
	Cause error  // Original error from a factory, if any
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %q (field %s): %v", e.Err.Error(), e.Ref, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s %q (field %s)", e.Err.Error(), e.Ref, e.Field)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// FieldError represents a failure while applying a strategy to a field.
type FieldError struct {
	Err   error  // Underlying sentinel error (ErrFieldAccess, ErrUnsupportedShape)
	Field string // Field name that failed
	Cause error  // Original error from the underlying operation, if any
}

func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (field %s): %v", e.Err.Error(), e.Field, e.Cause)
	}
	return fmt.Sprintf("%s (field %s)", e.Err.Error(), e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newResolveError creates a ResolveError for unresolvable references.
func newResolveError(sentinel error, field, ref string, cause error) error {
	return &ResolveError{
		Err:   sentinel,
		Field: field,
		Ref:   ref,
		Cause: cause,
	}
}

// newFieldError creates a FieldError for traversal failures.
func newFieldError(sentinel error, field string, cause error) error {
	return &FieldError{
		Err:   sentinel,
		Field: field,
		Cause: cause,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
