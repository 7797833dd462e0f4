package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// ENCODER METHODS

// WriteFixed32 encodes a 32-bit fixed-width little-endian value
func (e *Encoder) WriteFixed32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// WriteFixed64 encodes a 64-bit fixed-width little-endian value
func (e *Encoder) WriteFixed64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// DECODER METHODS

// ReadFixed32 decodes a 32-bit fixed-width value
func (d *Decoder) ReadFixed32() (uint32, error) {
	var b [4]byte
	if err := d.readFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// ReadFixed64 decodes a 64-bit fixed-width value
func (d *Decoder) ReadFixed64() (uint64, error) {
	var b [8]byte
	if err := d.readFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// readFull fills p or fails with ErrUnexpectedEndOfStream.
func (d *Decoder) readFull(p []byte) error {
	n, err := io.ReadFull(d.src, p)
	d.pos += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrUnexpectedEndOfStream
		}
		return err
	}
	return nil
}

// skipN discards exactly n bytes.
func (d *Decoder) skipN(n int64) error {
	if n == 0 {
		return nil
	}
	if rem, ok := d.remaining(); ok && int64(rem) < n {
		return ErrUnexpectedEndOfStream
	}
	copied, err := io.CopyN(io.Discard, d.src, n)
	d.pos += copied
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrUnexpectedEndOfStream
		}
		return err
	}
	return nil
}
