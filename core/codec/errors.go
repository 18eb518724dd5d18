package codec

import (
	"errors"
	"fmt"
)

// ErrDecode matches every error returned by Decode.
var ErrDecode = errors.New("cannot decode region document")

// MissingFieldError reports a mandatory field absent from a document.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%v: missing field %q", ErrDecode, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrDecode
}

// UnsupportedVariantError reports an unknown region type.
type UnsupportedVariantError struct {
	Type string
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("%v: unsupported region type %q", ErrDecode, e.Type)
}

func (e *UnsupportedVariantError) Is(target error) bool {
	return target == ErrDecode
}

// DecodeError reports a field whose value has the wrong shape.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: field %q: %v", ErrDecode, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
