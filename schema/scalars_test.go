package schema

import (
	"bytes"
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/anirudhraja/pureproto/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestScalars_WriteRead(t *testing.T) {
	tests := []struct {
		name     string
		record   *Record
		value    interface{}
		expected []byte
	}{
		{"bool true", Bool, true, []byte{0x01}},
		{"int32 150", Int32, int32(150), []byte{0x96, 0x01}},
		{"int32 -1", Int32, int32(-1), protowire.AppendVarint(nil, math.MaxUint64)},
		{"int64 min", Int64, int64(math.MinInt64), protowire.AppendVarint(nil, 1<<63)},
		{"uint32 max", Uint32, uint32(math.MaxUint32), protowire.AppendVarint(nil, math.MaxUint32)},
		{"uint64", Uint64, uint64(86942), []byte{0x9E, 0xA7, 0x05}},
		{"sint32 -1", Sint32, int32(-1), []byte{0x01}},
		{"sint32 -2", Sint32, int32(-2), []byte{0x03}},
		{"sint64 1", Sint64, int64(1), []byte{0x02}},
		{"fixed32", Fixed32, uint32(1), []byte{0x01, 0x00, 0x00, 0x00}},
		{"sfixed32 -1", Sfixed32, int32(-1), []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"float", Float, float32(1.5), protowire.AppendFixed32(nil, math.Float32bits(1.5))},
		{"fixed64", Fixed64, uint64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"sfixed64", Sfixed64, int64(-2), protowire.AppendFixed64(nil, uint64(math.MaxUint64-1))},
		{"double", Double, 3.25, protowire.AppendFixed64(nil, math.Float64bits(3.25))},
		{"string", String, "testing", []byte{0x07, 0x74, 0x65, 0x73, 0x74, 0x69, 0x6E, 0x67}},
		{"bytes", Bytes, []byte{0xDE, 0xAD}, []byte{0x02, 0xDE, 0xAD}},
		{"empty string", String, "", []byte{0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := wire.NewEncoder()
			if err := tt.record.Write(e, tt.value); err != nil {
				t.Fatalf("write: %v", err)
			}
			if !bytes.Equal(e.Bytes(), tt.expected) {
				t.Fatalf("got % X, want % X", e.Bytes(), tt.expected)
			}

			d := wire.NewBytesDecoder(tt.expected, wire.DecodeOptions{})
			values, err := tt.record.Read(d, tt.record.WireType)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(values) != 1 || !valueEqual(values[0], tt.value) {
				t.Fatalf("read %v, want %v", values, tt.value)
			}
		})
	}
}

func TestScalars_WrongGoType(t *testing.T) {
	e := wire.NewEncoder()
	err := Int32.Write(e, "150")
	if !errors.Is(err, wire.ErrIncorrectValue) {
		t.Fatalf("expected ErrIncorrectValue, got %v", err)
	}
	if err := String.Write(e, 5); !errors.Is(err, wire.ErrIncorrectValue) {
		t.Fatalf("expected ErrIncorrectValue, got %v", err)
	}
}

func TestScalars_WireTypeDispatch(t *testing.T) {
	// A numeric record given LEN reads a packed run.
	d := wire.NewBytesDecoder([]byte{0x03, 0x01, 0x02, 0x03}, wire.DecodeOptions{})
	values, err := Int32.Read(d, wire.WireBytes)
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 3 || values[0] != int32(1) || values[2] != int32(3) {
		t.Fatalf("unexpected packed values %v", values)
	}

	d = wire.NewBytesDecoder([]byte{0x01, 0x00, 0x00, 0x00}, wire.DecodeOptions{})
	if _, err := Int32.Read(d, wire.WireFixed32); !errors.Is(err, wire.ErrUnexpectedWireType) {
		t.Fatalf("expected ErrUnexpectedWireType, got %v", err)
	}

	d = wire.NewBytesDecoder([]byte{0x01}, wire.DecodeOptions{})
	if _, err := String.Read(d, wire.WireVarint); !errors.Is(err, wire.ErrUnexpectedWireType) {
		t.Fatalf("expected ErrUnexpectedWireType, got %v", err)
	}
}

func TestScalars_URL(t *testing.T) {
	u, _ := url.Parse("https://example.com/a?b=c")
	e := wire.NewEncoder()
	if err := URL.Write(e, u); err != nil {
		t.Fatal(err)
	}
	d := wire.NewBytesDecoder(e.Bytes(), wire.DecodeOptions{})
	values, err := URL.Read(d, wire.WireBytes)
	if err != nil {
		t.Fatal(err)
	}
	if got := values[0].(*url.URL).String(); got != u.String() {
		t.Errorf("got %s, want %s", got, u)
	}
}

func TestScalarRecord(t *testing.T) {
	for _, name := range []string{"bool", "int32", "sint64", "sfixed32", "double", "string", "bytes"} {
		r, ok := ScalarRecord(name)
		if !ok || r.Name != name {
			t.Errorf("ScalarRecord(%q) = %v, %v", name, r, ok)
		}
	}
	if _, ok := ScalarRecord("Person"); ok {
		t.Error("message names are not scalars")
	}
}
