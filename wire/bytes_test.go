package wire

import (
	"bytes"
	"errors"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestBytes_String(t *testing.T) {
	e := NewEncoder()
	e.WriteString("testing")
	want := []byte{0x07, 0x74, 0x65, 0x73, 0x74, 0x69, 0x6E, 0x67}
	if !bytes.Equal(e.Bytes(), want) {
		t.Fatalf("got % X, want % X", e.Bytes(), want)
	}

	d := NewBytesDecoder(want, DecodeOptions{})
	s, err := d.ReadString()
	if err != nil || s != "testing" {
		t.Fatalf("expected testing, got %q (%v)", s, err)
	}
}

func TestBytes_Truncated(t *testing.T) {
	d := NewBytesDecoder([]byte{0x07, 't', 'e'}, DecodeOptions{})
	if _, err := d.ReadBytes(); !errors.Is(err, ErrUnexpectedEndOfStream) {
		t.Fatalf("expected ErrUnexpectedEndOfStream, got %v", err)
	}
}

func TestBytes_LengthDelimited(t *testing.T) {
	e := NewEncoder()
	err := e.WriteLengthDelimited(func(inner *Encoder) error {
		inner.WriteTag(MakeTag(1, WireVarint))
		inner.WriteUvarint(150)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(e.Bytes(), []byte{0x03, 0x08, 0x96, 0x01}) {
		t.Fatalf("got % X", e.Bytes())
	}

	boom := errors.New("boom")
	e.Reset()
	if err := e.WriteLengthDelimited(func(*Encoder) error { return boom }); err != boom {
		t.Fatalf("expected callback error, got %v", err)
	}
	if e.Len() != 0 {
		t.Errorf("failed write left %d bytes", e.Len())
	}
}

func TestBytes_Packed(t *testing.T) {
	var data []byte
	data = protowire.AppendVarint(data, 4)
	data = append(data, 0x01, 0x02, 0x96, 0x01)

	d := NewBytesDecoder(data, DecodeOptions{})
	var got []uint64
	err := d.ReadPacked(func(p *Decoder) error {
		v, err := p.ReadUvarint()
		got = append(got, v)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 150 {
		t.Errorf("unexpected packed values %v", got)
	}

	// A varint cut by the end of the payload.
	d = NewBytesDecoder([]byte{0x02, 0x01, 0x96}, DecodeOptions{})
	err = d.ReadPacked(func(p *Decoder) error {
		_, err := p.ReadUvarint()
		return err
	})
	if !errors.Is(err, ErrUnexpectedEndOfStream) {
		t.Fatalf("expected ErrUnexpectedEndOfStream, got %v", err)
	}
}

func TestBytes_EmbeddedDepth(t *testing.T) {
	d := NewBytesDecoder([]byte{0x02, 0x00, 0x00}, DecodeOptions{MaxDepth: 1})
	sub, err := d.ReadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	if sub.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", sub.Depth())
	}
	if _, err := sub.ReadEmbedded(); !errors.Is(err, ErrIncorrectValue) {
		t.Fatalf("expected ErrIncorrectValue past max depth, got %v", err)
	}
}

func TestFixed_MatchesProtowire(t *testing.T) {
	e := NewEncoder()
	e.WriteFixed32(0x01020304)
	e.WriteFixed64(0x0102030405060708)
	want := protowire.AppendFixed32(nil, 0x01020304)
	want = protowire.AppendFixed64(want, 0x0102030405060708)
	if !bytes.Equal(e.Bytes(), want) {
		t.Fatalf("got % X, want % X", e.Bytes(), want)
	}

	d := NewBytesDecoder(want, DecodeOptions{})
	v32, err := d.ReadFixed32()
	if err != nil || v32 != 0x01020304 {
		t.Fatalf("fixed32: %x (%v)", v32, err)
	}
	v64, err := d.ReadFixed64()
	if err != nil || v64 != 0x0102030405060708 {
		t.Fatalf("fixed64: %x (%v)", v64, err)
	}
	if _, err := d.ReadFixed32(); !IsEndOfStream(err) {
		t.Fatalf("expected end of stream, got %v", err)
	}
}
