package schema

import (
	"github.com/anirudhraja/pureproto/wire"
)

// Packing selects how a repeated field is written.
type Packing int8

const (
	// DefaultPacking packs repeated fields of VARINT, FIXED32 and FIXED64 records.
	DefaultPacking Packing = iota
	ForcePacked
	ForceUnpacked
)

func (p Packing) resolve(def bool) bool {
	switch p {
	case ForcePacked:
		return true
	case ForceUnpacked:
		return false
	default:
		return def
	}
}

// Field is the descriptor of one declared field: its record plus the
// per-field policy (number, repetition, packing, oneof membership).
type Field struct {
	number   wire.FieldNumber
	name     string
	record   *Record
	repeated bool
	optional bool
	packed   bool
	oneof    *OneOf
	index    int

	write      WriteFunc
	accumulate AccumulateFunc
	merge      MergeFunc
}

func (f *Field) Number() wire.FieldNumber { return f.number }
func (f *Field) Name() string             { return f.name }
func (f *Field) Record() *Record          { return f.record }
func (f *Field) IsRepeated() bool         { return f.repeated }
func (f *Field) IsOptional() bool         { return f.optional }
func (f *Field) IsPacked() bool           { return f.packed }

// OneOf returns the group the field belongs to, or nil.
func (f *Field) OneOf() *OneOf { return f.oneof }

// Write writes the field, tag included. Absent values write nothing.
func (f *Field) Write(e *wire.Encoder, value interface{}) error {
	return f.write(e, value)
}

// Read reads one wire occurrence of the field.
func (f *Field) Read(d *wire.Decoder, actual wire.WireType) ([]interface{}, error) {
	return f.record.Read(d, actual)
}

// Accumulate folds values read from the wire into the field's current value.
func (f *Field) Accumulate(existing interface{}, values []interface{}) (interface{}, error) {
	return f.accumulate(existing, values)
}

// Merge combines two values of the field.
func (f *Field) Merge(lhs, rhs interface{}) (interface{}, error) {
	return f.merge(lhs, rhs)
}

func newField(spec fieldSpec, index int) *Field {
	rec := spec.record
	f := &Field{
		number:     spec.number,
		name:       spec.name,
		record:     rec,
		repeated:   spec.repeated,
		optional:   spec.optional,
		packed:     spec.packing.resolve(spec.repeated && rec.Packable()),
		index:      index,
		accumulate: rec.accumulate(),
		merge:      rec.merge(),
	}

	write := rec.Write
	if f.packed {
		// Packed elements are untagged inside a single LEN value.
		if f.repeated {
			write = writeRepeated(write)
		}
		write = writeLengthDelimited(write)
		write = writeTagged(write, wire.MakeTag(f.number, wire.WireBytes))
	} else {
		write = writeTagged(write, wire.MakeTag(f.number, rec.WireType))
		if f.repeated {
			write = writeRepeated(write)
		}
	}
	f.write = writeOptional(write)

	if f.repeated {
		f.accumulate = AccumulateAppend
		f.merge = MergeConcatenate
	}
	return f
}

func writeTagged(inner WriteFunc, tag wire.Tag) WriteFunc {
	encoded := wire.AppendUvarint(nil, tag.Encode())
	return func(e *wire.Encoder, value interface{}) error {
		e.WriteRaw(encoded)
		return inner(e, value)
	}
}

func writeRepeated(inner WriteFunc) WriteFunc {
	return func(e *wire.Encoder, value interface{}) error {
		list, ok := value.([]interface{})
		if !ok {
			return typeError("repeated", value)
		}
		for _, v := range list {
			if err := inner(e, v); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeLengthDelimited(inner WriteFunc) WriteFunc {
	return func(e *wire.Encoder, value interface{}) error {
		return e.WriteLengthDelimited(func(scratch *wire.Encoder) error {
			return inner(scratch, value)
		})
	}
}

func writeOptional(inner WriteFunc) WriteFunc {
	return func(e *wire.Encoder, value interface{}) error {
		if isAbsent(value) {
			return nil
		}
		return inner(e, value)
	}
}

// isAbsent reports whether a field value means "unset": nil, a nil message,
// or an empty list.
func isAbsent(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *Message:
		return v == nil
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}
