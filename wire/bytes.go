package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ENCODER METHODS

// WriteBytes encodes a byte array as length-delimited
func (e *Encoder) WriteBytes(data []byte) {
	e.WriteUvarint(uint64(len(data)))
	e.buf = append(e.buf, data...)
}

// WriteString encodes a string as length-delimited bytes
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteLengthDelimited runs fn against a scratch encoder and writes what it
// produced as a single length-delimited value. Used for embedded messages and
// packed repeated fields.
func (e *Encoder) WriteLengthDelimited(fn func(*Encoder) error) error {
	scratch := NewEncoder()
	if err := fn(scratch); err != nil {
		return err
	}
	e.WriteBytes(scratch.buf)
	return nil
}

// DECODER METHODS

// ReadBytes decodes a length-delimited byte array into a fresh slice.
func (d *Decoder) ReadBytes() ([]byte, error) {
	length, err := d.readLength()
	if err != nil {
		return nil, err
	}

	if rem, ok := d.remaining(); ok {
		if int64(rem) < length {
			return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEndOfStream, length, rem)
		}
		data := make([]byte, length)
		return data, d.readFull(data)
	}

	// Unknown source length: grow as bytes arrive instead of trusting the prefix.
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(d.src, length))
	d.pos += n
	if err != nil {
		return nil, err
	}
	if n < length {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEndOfStream, length, n)
	}
	return buf.Bytes(), nil
}

// ReadString decodes a length-delimited string
func (d *Decoder) ReadString() (string, error) {
	data, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SkipBytes skips over a length-delimited byte array
func (d *Decoder) SkipBytes() error {
	length, err := d.readLength()
	if err != nil {
		return err
	}
	return d.skipN(length)
}

// ReadEmbedded reads a length-delimited payload and returns a decoder over it
// one nesting level deeper.
func (d *Decoder) ReadEmbedded() (*Decoder, error) {
	if d.depth+1 > d.opts.MaxDepth {
		return nil, fmt.Errorf("%w: message nesting exceeds %d", ErrIncorrectValue, d.opts.MaxDepth)
	}
	payload, err := d.ReadBytes()
	if err != nil {
		return nil, err
	}
	return d.child(payload, d.depth+1), nil
}

// ReadPacked reads a length-delimited run of untagged values, calling elem
// until the payload is exhausted. A value cut short by the end of the payload
// is ErrUnexpectedEndOfStream.
func (d *Decoder) ReadPacked(elem func(*Decoder) error) error {
	payload, err := d.ReadBytes()
	if err != nil {
		return err
	}
	packed := d.child(payload, d.depth)
	for packed.More() {
		if err := elem(packed); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) readLength() (int64, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if length > 1<<31-1 {
		return 0, fmt.Errorf("%w: length %d too large", ErrIncorrectValue, length)
	}
	return int64(length), nil
}

// IsEndOfStream reports whether err means the input was truncated.
func IsEndOfStream(err error) bool {
	return errors.Is(err, ErrUnexpectedEndOfStream)
}
