package wire

import "fmt"

// ===== PROTOBUF WIRE FORMAT TYPES =====

// WireType represents protobuf wire format types
type WireType int8

const (
	WireVarint     WireType = 0 // int32, int64, uint32, uint64, sint32, sint64, bool, enum
	WireFixed64    WireType = 1 // fixed64, sfixed64, double
	WireBytes      WireType = 2 // string, bytes, embedded messages, packed repeated fields
	WireStartGroup WireType = 3 // deprecated
	WireEndGroup   WireType = 4 // deprecated
	WireFixed32    WireType = 5 // fixed32, sfixed32, float
)

// IsPrimitiveNumeric reports whether values of this wire type may be packed.
func (wt WireType) IsPrimitiveNumeric() bool {
	return wt == WireVarint || wt == WireFixed64 || wt == WireFixed32
}

// Valid reports whether wt is one of the six defined wire types.
func (wt WireType) Valid() bool {
	return wt >= WireVarint && wt <= WireFixed32
}

func (wt WireType) String() string {
	switch wt {
	case WireVarint:
		return "VARINT"
	case WireFixed64:
		return "FIXED64"
	case WireBytes:
		return "LEN"
	case WireStartGroup:
		return "SGROUP"
	case WireEndGroup:
		return "EGROUP"
	case WireFixed32:
		return "FIXED32"
	default:
		return fmt.Sprintf("WireType(%d)", int8(wt))
	}
}

// FieldNumber represents a protobuf field number
type FieldNumber int32

const (
	MinFieldNumber FieldNumber = 1
	MaxFieldNumber FieldNumber = 1<<29 - 1

	FirstReservedNumber FieldNumber = 19000
	LastReservedNumber  FieldNumber = 19999
)

// IsValid reports whether n may be declared in a schema: inside the legal
// range and outside the block reserved for the protobuf implementation.
func (n FieldNumber) IsValid() bool {
	return n >= MinFieldNumber && n <= MaxFieldNumber && !n.IsReserved()
}

// IsReserved reports whether n falls into 19000..19999.
func (n FieldNumber) IsReserved() bool {
	return n >= FirstReservedNumber && n <= LastReservedNumber
}

// Tag is the (field number, wire type) pair preceding every encoded value.
type Tag struct {
	Number   FieldNumber
	WireType WireType
}

// MakeTag creates a tag from field number and wire type
func MakeTag(fieldNumber FieldNumber, wireType WireType) Tag {
	return Tag{Number: fieldNumber, WireType: wireType}
}

// Encode packs the tag into the value written as a varint.
func (t Tag) Encode() uint64 {
	return uint64(t.Number)<<3 | uint64(t.WireType)
}

func (t Tag) String() string {
	return fmt.Sprintf("%d:%s", t.Number, t.WireType)
}

// DecodeTag splits a decoded varint into field number and wire type.
func DecodeTag(v uint64) (Tag, error) {
	wt := WireType(v & 0x7)
	if !wt.Valid() {
		return Tag{}, fmt.Errorf("%w: %d", ErrIncorrectWireType, v&0x7)
	}
	n := v >> 3
	if n > uint64(MaxFieldNumber) {
		return Tag{}, fmt.Errorf("%w: field number %d out of range", ErrIncorrectValue, n)
	}
	return Tag{Number: FieldNumber(n), WireType: wt}, nil
}

// Value represents a raw field read without a schema
type Value struct {
	FieldNumber FieldNumber
	WireType    WireType
	Data        interface{} // uint64 for VARINT/FIXED64, uint32 for FIXED32, []byte for LEN, nil for groups
}
