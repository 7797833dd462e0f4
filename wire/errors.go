package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Wire format errors. Detailed errors wrap one of these, test with errors.Is.
var (
	// ErrUnexpectedEndOfStream is returned when the source ends inside a tag,
	// a varint, a fixed-width value or a length-delimited payload.
	ErrUnexpectedEndOfStream = errors.New("wire: unexpected end of stream")
	// ErrIncorrectWireType is returned when the low 3 bits of a tag are 6 or 7.
	ErrIncorrectWireType = errors.New("wire: incorrect wire type")
	// ErrUnexpectedWireType is returned when a known field arrives with a wire
	// type that is neither its own nor the packed alternative.
	ErrUnexpectedWireType = errors.New("wire: unexpected wire type")
	// ErrIncorrectValue is returned when a value is outside its type's domain.
	ErrIncorrectValue = errors.New("wire: incorrect value")
)

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []string // e.g., ["order", "items", "price"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at proto path %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// WrapWithField prefixes the field path of err with fieldName.
func WrapWithField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}
