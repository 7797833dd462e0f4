package schema

import (
	"github.com/anirudhraja/pureproto/wire"
)

// WriteFunc writes one complete value, without its tag.
type WriteFunc func(e *wire.Encoder, value interface{}) error

// ReadFunc reads one record given the wire type found in its tag. A packed
// run yields several values from one call.
type ReadFunc func(d *wire.Decoder, actual wire.WireType) ([]interface{}, error)

// AccumulateFunc folds values read from the wire into the current field value,
// which is nil when the field has not been seen yet.
type AccumulateFunc func(existing interface{}, values []interface{}) (interface{}, error)

// MergeFunc combines the values of one field taken from two messages.
type MergeFunc func(lhs, rhs interface{}) (interface{}, error)

// Record describes how values of one type are written, read, accumulated
// across repeated wire occurrences and merged across messages. A Record is
// shared by every field of its type and must not be modified once in use.
type Record struct {
	// Name is the protobuf type name: "int32", "string", an enum or message name.
	Name     string
	WireType wire.WireType

	Write WriteFunc
	Read  ReadFunc

	// Accumulate defaults to AccumulateLastOneWins, Merge to MergeLastOneWins.
	Accumulate AccumulateFunc
	Merge      MergeFunc

	// Check validates a value assigned through Message.Set. Optional.
	Check func(value interface{}) error
	// Coerce converts loosely typed input (JSON numbers, strings, maps) into
	// the record's Go type. Optional; used by FromMap.
	Coerce func(value interface{}) (interface{}, error)
	// Export converts a value into its plain form for AsMap. Optional.
	Export func(value interface{}) interface{}
	// Default is the value an absent field reads as: zero for scalars, the
	// first declared value for enums. Message records report a new empty
	// message instead.
	Default interface{}

	// owner is the message type of records made by MessageRecord.
	owner *Type
}

// Packable reports whether repeated fields of this record pack by default.
func (r *Record) Packable() bool {
	return r.WireType.IsPrimitiveNumeric()
}

func (r *Record) accumulate() AccumulateFunc {
	if r.Accumulate != nil {
		return r.Accumulate
	}
	return AccumulateLastOneWins
}

func (r *Record) merge() MergeFunc {
	if r.Merge != nil {
		return r.Merge
	}
	return MergeLastOneWins
}

// Zero returns the default value of the record's type.
func (r *Record) Zero() interface{} {
	if r.owner != nil {
		return r.owner.New()
	}
	return r.Default
}

func (r *Record) check(value interface{}) error {
	if r.Check == nil {
		return nil
	}
	return r.Check(value)
}

// AccumulateLastOneWins keeps only the last value seen.
func AccumulateLastOneWins(existing interface{}, values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return existing, nil
	}
	return values[len(values)-1], nil
}

// AccumulateAppend appends every value to the list held by the field.
func AccumulateAppend(existing interface{}, values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return existing, nil
	}
	list, _ := existing.([]interface{})
	return append(list[:len(list):len(list)], values...), nil
}

// MergeLastOneWins returns rhs when it is present, lhs otherwise.
func MergeLastOneWins(lhs, rhs interface{}) (interface{}, error) {
	if rhs != nil {
		return rhs, nil
	}
	return lhs, nil
}

// MergeConcatenate appends rhs to lhs. The result never writes into spare
// capacity of lhs, which another message may share.
func MergeConcatenate(lhs, rhs interface{}) (interface{}, error) {
	if lhs == nil {
		return rhs, nil
	}
	if rhs == nil {
		return lhs, nil
	}
	list := lhs.([]interface{})
	return append(list[:len(list):len(list)], rhs.([]interface{})...), nil
}

// readOneFunc reads a single untagged value.
type readOneFunc func(d *wire.Decoder) (interface{}, error)

// readMaybePacked accepts the record's own wire type, yielding one value, or
// LEN, yielding every value of a packed run.
func readMaybePacked(unpacked wire.WireType, readOne readOneFunc) ReadFunc {
	return func(d *wire.Decoder, actual wire.WireType) ([]interface{}, error) {
		switch actual {
		case unpacked:
			v, err := readOne(d)
			if err != nil {
				return nil, err
			}
			return []interface{}{v}, nil
		case wire.WireBytes:
			var values []interface{}
			err := d.ReadPacked(func(p *wire.Decoder) error {
				v, err := readOne(p)
				if err != nil {
					return err
				}
				values = append(values, v)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return values, nil
		default:
			return nil, unexpectedWireType(unpacked, actual, true)
		}
	}
}

// readStrict accepts only the expected wire type.
func readStrict(expected wire.WireType, readOne readOneFunc) ReadFunc {
	return func(d *wire.Decoder, actual wire.WireType) ([]interface{}, error) {
		if actual != expected {
			return nil, unexpectedWireType(expected, actual, false)
		}
		v, err := readOne(d)
		if err != nil {
			return nil, err
		}
		return []interface{}{v}, nil
	}
}

func checkType[T any](name string) func(interface{}) error {
	return func(value interface{}) error {
		if _, ok := value.(T); !ok {
			return typeError(name, value)
		}
		return nil
	}
}

// MessageType returns the message type carried by a record made by
// MessageRecord, or nil for scalar and enum records.
func (r *Record) MessageType() *Type {
	return r.owner
}
