package schema

import (
	"fmt"

	"github.com/anirudhraja/pureproto/wire"
)

// EnumValue is one named constant of an enum.
type EnumValue struct {
	Name   string
	Number int32
}

// Enum represents an enum definition. Several names may share a number
// (allow_alias); the first one declared is the canonical name.
type Enum struct {
	name     string
	values   []EnumValue
	byNumber map[int32]string
	byName   map[string]int32
	record   *Record
}

// NewEnum defines an enum. Duplicate names are rejected.
func NewEnum(name string, values ...EnumValue) (*Enum, error) {
	e := &Enum{
		name:     name,
		values:   append([]EnumValue(nil), values...),
		byNumber: make(map[int32]string, len(values)),
		byName:   make(map[string]int32, len(values)),
	}
	for _, v := range values {
		if _, dup := e.byName[v.Name]; dup {
			return nil, fmt.Errorf("%w: enum %s declares %s twice", ErrIncorrectAnnotation, name, v.Name)
		}
		e.byName[v.Name] = v.Number
		if _, ok := e.byNumber[v.Number]; !ok {
			e.byNumber[v.Number] = v.Name
		}
	}
	e.record = newEnumRecord(e)
	return e, nil
}

// MustEnum is like NewEnum but panics on error. For package-level definitions.
func MustEnum(name string, values ...EnumValue) *Enum {
	e, err := NewEnum(name, values...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Enum) Name() string        { return e.name }
func (e *Enum) Values() []EnumValue { return append([]EnumValue(nil), e.values...) }

// NameOf returns the canonical name of a number.
func (e *Enum) NameOf(number int32) (string, bool) {
	name, ok := e.byNumber[number]
	return name, ok
}

// NumberOf returns the number behind a name.
func (e *Enum) NumberOf(name string) (int32, bool) {
	number, ok := e.byName[name]
	return number, ok
}

// Contains reports whether number is declared.
func (e *Enum) Contains(number int32) bool {
	_, ok := e.byNumber[number]
	return ok
}

// Record returns the record for fields of this enum. Enum values are int32 in
// Go and VARINT on the wire.
func (e *Enum) Record() *Record {
	return e.record
}

func newEnumRecord(e *Enum) *Record {
	var first int32
	if len(e.values) > 0 {
		first = e.values[0].Number
	}
	return &Record{
		Name:     e.name,
		WireType: wire.WireVarint,
		Write: func(enc *wire.Encoder, value interface{}) error {
			v, ok := value.(int32)
			if !ok {
				return typeError(e.name, value)
			}
			enc.WriteVarint(int64(v))
			return nil
		},
		Read: readMaybePacked(wire.WireVarint, func(d *wire.Decoder) (interface{}, error) {
			raw, err := d.ReadUvarint()
			if err != nil {
				return nil, err
			}
			v := int32(raw)
			if !e.Contains(v) && !d.Options().AllowUnknownEnumValues {
				return nil, fmt.Errorf("%w: incorrect value %d for enum %s", wire.ErrIncorrectValue, v, e.name)
			}
			return v, nil
		}),
		Check:   checkType[int32](e.name),
		Default: first,
		Coerce: func(value interface{}) (interface{}, error) {
			if s, ok := value.(string); ok {
				if n, ok := e.NumberOf(s); ok {
					return n, nil
				}
				return nil, fmt.Errorf("%w: %q is not a value of %s", wire.ErrIncorrectValue, s, e.name)
			}
			return coerceSigned[int32](-1<<31, 1<<31-1)(value)
		},
		Export: func(value interface{}) interface{} {
			if v, ok := value.(int32); ok {
				if name, ok := e.NameOf(v); ok {
					return name
				}
			}
			return value
		},
	}
}
