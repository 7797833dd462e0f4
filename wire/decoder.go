package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxDepth bounds the nesting of embedded messages during a decode.
const DefaultMaxDepth = 100

// DecodeOptions tune how values are interpreted while reading.
type DecodeOptions struct {
	// AllowUnknownEnumValues keeps enum numbers that are not declared in the
	// enum instead of failing with ErrIncorrectValue.
	AllowUnknownEnumValues bool
	// MaxDepth limits embedded message nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Source is the byte source a Decoder reads from.
type Source interface {
	io.Reader
	io.ByteReader
}

// Decoder handles low-level protobuf wire format decoding over a byte source.
// A Decoder is owned by a single decode call and is not safe for concurrent use.
type Decoder struct {
	src     Source
	pos     int64
	depth   int
	opts    DecodeOptions
	skipped *int
}

// NewDecoder creates a decoder reading from r. Readers that are not already a
// Source are wrapped in a bufio.Reader, which may read ahead of the message.
func NewDecoder(r io.Reader, opts DecodeOptions) *Decoder {
	src, ok := r.(Source)
	if !ok {
		src = bufio.NewReader(r)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Decoder{
		src:     src,
		opts:    opts,
		skipped: new(int),
	}
}

// NewBytesDecoder creates a decoder over an in-memory buffer.
func NewBytesDecoder(data []byte, opts DecodeOptions) *Decoder {
	return NewDecoder(bytes.NewReader(data), opts)
}

// child creates a decoder over a length-delimited payload that shares the
// options and unknown-field counter of its parent.
func (d *Decoder) child(payload []byte, depth int) *Decoder {
	return &Decoder{
		src:     bytes.NewReader(payload),
		depth:   depth,
		opts:    d.opts,
		skipped: d.skipped,
	}
}

// Options returns the options the decoder was created with.
func (d *Decoder) Options() DecodeOptions {
	return d.opts
}

// Offset returns the number of bytes consumed from this decoder's source.
func (d *Decoder) Offset() int64 {
	return d.pos
}

// Depth returns the embedded message nesting level, 0 for the outermost message.
func (d *Decoder) Depth() int {
	return d.depth
}

// Skipped returns how many unknown fields were skipped by this decoder and
// every nested decoder created from it.
func (d *Decoder) Skipped() int {
	return *d.skipped
}

// More reports whether unread bytes remain. It is only decisive for sources
// that can report their length or peek, which covers every decoder this
// package creates.
func (d *Decoder) More() bool {
	if rem, ok := d.remaining(); ok {
		return rem > 0
	}
	if p, ok := d.src.(interface{ Peek(int) ([]byte, error) }); ok {
		_, err := p.Peek(1)
		return err == nil
	}
	return false
}

func (d *Decoder) remaining() (int, bool) {
	if l, ok := d.src.(interface{ Len() int }); ok {
		return l.Len(), true
	}
	return 0, false
}

// ReadTag reads the next field tag. The boolean result is false, with a nil
// error, only when the source ends cleanly before the first byte of a tag;
// that is the one non-error way for a message to end.
func (d *Decoder) ReadTag() (Tag, bool, error) {
	first, err := d.src.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Tag{}, false, nil
		}
		return Tag{}, false, err
	}
	d.pos++

	v, err := d.continueUvarint(first)
	if err != nil {
		return Tag{}, false, err
	}
	tag, err := DecodeTag(v)
	if err != nil {
		return Tag{}, false, err
	}
	return tag, true, nil
}

// Skip consumes one value of the given wire type without interpreting it and
// counts it as an unknown field.
func (d *Decoder) Skip(wireType WireType) error {
	var err error
	switch wireType {
	case WireVarint:
		err = d.SkipVarint()
	case WireFixed64:
		err = d.skipN(8)
	case WireBytes:
		err = d.SkipBytes()
	case WireFixed32:
		err = d.skipN(4)
	case WireStartGroup, WireEndGroup:
		// group markers carry no payload
	default:
		err = fmt.Errorf("%w: %d", ErrIncorrectWireType, wireType)
	}
	if err == nil {
		*d.skipped++
	}
	return err
}

// ReadField reads one tagged value without a schema. ok is false at a clean
// end of stream.
func (d *Decoder) ReadField() (value Value, ok bool, err error) {
	tag, ok, err := d.ReadTag()
	if err != nil || !ok {
		return Value{}, ok, err
	}

	value = Value{FieldNumber: tag.Number, WireType: tag.WireType}
	switch tag.WireType {
	case WireVarint:
		value.Data, err = d.ReadUvarint()
	case WireFixed64:
		value.Data, err = d.ReadFixed64()
	case WireBytes:
		value.Data, err = d.ReadBytes()
	case WireFixed32:
		value.Data, err = d.ReadFixed32()
	}
	if err != nil {
		return Value{}, false, fmt.Errorf("field %d: %w", tag.Number, err)
	}
	return value, true, nil
}
