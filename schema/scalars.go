package schema

import (
	"fmt"
	"math"
	"net/url"

	"github.com/anirudhraja/pureproto/wire"
)

// Predefined records for the protobuf scalar types. Signed integers follow
// the protobuf mapping: int32/int64 are two's complement varints, sint32/sint64
// are zigzag varints, sfixed32/sfixed64 are little-endian fixed values.
var (
	Bool = varintRecord("bool",
		func(v uint64) bool { return v != 0 },
		func(v bool) uint64 {
			if v {
				return 1
			}
			return 0
		},
		coerceBool)

	Int32 = varintRecord("int32",
		func(v uint64) int32 { return int32(v) },
		func(v int32) uint64 { return uint64(int64(v)) },
		coerceSigned[int32](math.MinInt32, math.MaxInt32))

	Int64 = varintRecord("int64",
		func(v uint64) int64 { return int64(v) },
		func(v int64) uint64 { return uint64(v) },
		coerceSigned[int64](math.MinInt64, math.MaxInt64))

	Uint32 = varintRecord("uint32",
		func(v uint64) uint32 { return uint32(v) },
		func(v uint32) uint64 { return uint64(v) },
		coerceUnsigned[uint32](math.MaxUint32))

	Uint64 = varintRecord("uint64",
		func(v uint64) uint64 { return v },
		func(v uint64) uint64 { return v },
		coerceUnsigned[uint64](math.MaxUint64))

	Sint32 = varintRecord("sint32",
		wire.DecodeZigZag32,
		wire.EncodeZigZag32,
		coerceSigned[int32](math.MinInt32, math.MaxInt32))

	Sint64 = varintRecord("sint64",
		wire.DecodeZigZag64,
		wire.EncodeZigZag64,
		coerceSigned[int64](math.MinInt64, math.MaxInt64))

	Fixed32 = fixed32Record("fixed32",
		func(v uint32) uint32 { return v },
		func(v uint32) uint32 { return v },
		coerceUnsigned[uint32](math.MaxUint32))

	Sfixed32 = fixed32Record("sfixed32",
		func(v uint32) int32 { return int32(v) },
		func(v int32) uint32 { return uint32(v) },
		coerceSigned[int32](math.MinInt32, math.MaxInt32))

	Float = fixed32Record("float",
		math.Float32frombits,
		math.Float32bits,
		coerceFloat32)

	Fixed64 = fixed64Record("fixed64",
		func(v uint64) uint64 { return v },
		func(v uint64) uint64 { return v },
		coerceUnsigned[uint64](math.MaxUint64))

	Sfixed64 = fixed64Record("sfixed64",
		func(v uint64) int64 { return int64(v) },
		func(v int64) uint64 { return uint64(v) },
		coerceSigned[int64](math.MinInt64, math.MaxInt64))

	Double = fixed64Record("double",
		math.Float64frombits,
		math.Float64bits,
		coerceFloat64)

	String = &Record{
		Name:     "string",
		WireType: wire.WireBytes,
		Write: func(e *wire.Encoder, value interface{}) error {
			s, ok := value.(string)
			if !ok {
				return typeError("string", value)
			}
			e.WriteString(s)
			return nil
		},
		Read: readStrict(wire.WireBytes, func(d *wire.Decoder) (interface{}, error) {
			return d.ReadString()
		}),
		Check:   checkType[string]("string"),
		Coerce:  coerceString,
		Default: "",
	}

	Bytes = &Record{
		Name:     "bytes",
		WireType: wire.WireBytes,
		Write: func(e *wire.Encoder, value interface{}) error {
			b, ok := value.([]byte)
			if !ok {
				return typeError("bytes", value)
			}
			e.WriteBytes(b)
			return nil
		},
		Read: readStrict(wire.WireBytes, func(d *wire.Decoder) (interface{}, error) {
			return d.ReadBytes()
		}),
		Check:   checkType[[]byte]("bytes"),
		Coerce:  coerceBytes,
		Default: []byte{},
	}

	// URL is carried as a string on the wire and as *url.URL in Go.
	URL = &Record{
		Name:     "url",
		WireType: wire.WireBytes,
		Write: func(e *wire.Encoder, value interface{}) error {
			u, ok := value.(*url.URL)
			if !ok || u == nil {
				return typeError("url", value)
			}
			e.WriteString(u.String())
			return nil
		},
		Read: readStrict(wire.WireBytes, func(d *wire.Decoder) (interface{}, error) {
			s, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			u, err := url.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", wire.ErrIncorrectValue, err)
			}
			return u, nil
		}),
		Check:   checkType[*url.URL]("url"),
		Default: &url.URL{},
		Coerce: func(value interface{}) (interface{}, error) {
			switch v := value.(type) {
			case *url.URL:
				return v, nil
			case string:
				return url.Parse(v)
			default:
				return nil, typeError("url", value)
			}
		},
		Export: func(value interface{}) interface{} {
			if u, ok := value.(*url.URL); ok {
				return u.String()
			}
			return value
		},
	}
)

var scalarsByName = map[string]*Record{
	"bool":     Bool,
	"int32":    Int32,
	"int64":    Int64,
	"uint32":   Uint32,
	"uint64":   Uint64,
	"sint32":   Sint32,
	"sint64":   Sint64,
	"fixed32":  Fixed32,
	"sfixed32": Sfixed32,
	"float":    Float,
	"fixed64":  Fixed64,
	"sfixed64": Sfixed64,
	"double":   Double,
	"string":   String,
	"bytes":    Bytes,
}

// ScalarRecord returns the predefined record for a protobuf scalar type name.
func ScalarRecord(name string) (*Record, bool) {
	r, ok := scalarsByName[name]
	return r, ok
}

func varintRecord[T any](name string, fromWire func(uint64) T, toWire func(T) uint64, coerce func(interface{}) (interface{}, error)) *Record {
	var zero T
	return &Record{
		Name:     name,
		WireType: wire.WireVarint,
		Write: func(e *wire.Encoder, value interface{}) error {
			v, ok := value.(T)
			if !ok {
				return typeError(name, value)
			}
			e.WriteUvarint(toWire(v))
			return nil
		},
		Read: readMaybePacked(wire.WireVarint, func(d *wire.Decoder) (interface{}, error) {
			v, err := d.ReadUvarint()
			if err != nil {
				return nil, err
			}
			return fromWire(v), nil
		}),
		Check:   checkType[T](name),
		Coerce:  coerce,
		Default: zero,
	}
}

func fixed32Record[T any](name string, fromWire func(uint32) T, toWire func(T) uint32, coerce func(interface{}) (interface{}, error)) *Record {
	var zero T
	return &Record{
		Name:     name,
		WireType: wire.WireFixed32,
		Write: func(e *wire.Encoder, value interface{}) error {
			v, ok := value.(T)
			if !ok {
				return typeError(name, value)
			}
			e.WriteFixed32(toWire(v))
			return nil
		},
		Read: readMaybePacked(wire.WireFixed32, func(d *wire.Decoder) (interface{}, error) {
			v, err := d.ReadFixed32()
			if err != nil {
				return nil, err
			}
			return fromWire(v), nil
		}),
		Check:   checkType[T](name),
		Coerce:  coerce,
		Default: zero,
	}
}

func fixed64Record[T any](name string, fromWire func(uint64) T, toWire func(T) uint64, coerce func(interface{}) (interface{}, error)) *Record {
	var zero T
	return &Record{
		Name:     name,
		WireType: wire.WireFixed64,
		Write: func(e *wire.Encoder, value interface{}) error {
			v, ok := value.(T)
			if !ok {
				return typeError(name, value)
			}
			e.WriteFixed64(toWire(v))
			return nil
		},
		Read: readMaybePacked(wire.WireFixed64, func(d *wire.Decoder) (interface{}, error) {
			v, err := d.ReadFixed64()
			if err != nil {
				return nil, err
			}
			return fromWire(v), nil
		}),
		Check:   checkType[T](name),
		Coerce:  coerce,
		Default: zero,
	}
}
