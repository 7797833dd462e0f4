package schema

import (
	"errors"
	"fmt"

	"github.com/anirudhraja/pureproto/wire"
)

var (
	// ErrIncorrectAnnotation is returned by Builder.Build for field
	// declarations that can never be valid: numbers out of range or reserved,
	// duplicate numbers or names, missing records.
	ErrIncorrectAnnotation = errors.New("schema: incorrect field declaration")
	// ErrUnknownField is returned when a message is addressed by a field name
	// its type does not declare.
	ErrUnknownField = errors.New("schema: unknown field")
	// ErrTypeMismatch is returned when messages of different types are combined.
	ErrTypeMismatch = errors.New("schema: message type mismatch")
)

func typeError(record string, value interface{}) error {
	return fmt.Errorf("%w: %s field cannot hold %T", wire.ErrIncorrectValue, record, value)
}

func unexpectedWireType(expected, actual wire.WireType, packable bool) error {
	if packable {
		return fmt.Errorf("%w: expected %s or a packed %s, got %s",
			wire.ErrUnexpectedWireType, expected, wire.WireBytes, actual)
	}
	return fmt.Errorf("%w: expected %s, got %s", wire.ErrUnexpectedWireType, expected, actual)
}
