package wire

import (
	"errors"
	"fmt"
	"io"
)

// maxVarintLen is the longest varint encoding of a 64-bit value.
const maxVarintLen = 10

// ENCODER METHODS

// AppendUvarint appends v as a base-128 varint, least significant group first.
func AppendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// WriteUvarint encodes a uint64 as varint
func (e *Encoder) WriteUvarint(v uint64) {
	e.buf = AppendUvarint(e.buf, v)
}

// WriteVarint writes a signed integer in two's complement form, the
// representation of int32 and int64 fields. Negative values take 10 bytes.
func (e *Encoder) WriteVarint(v int64) {
	e.WriteUvarint(uint64(v))
}

// WriteZigZag writes a signed integer with zigzag encoding (sint32, sint64).
func (e *Encoder) WriteZigZag(v int64) {
	e.WriteUvarint(EncodeZigZag64(v))
}

// DECODER METHODS

// ReadUvarint decodes a varint from the source.
func (d *Decoder) ReadUvarint() (uint64, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	return d.continueUvarint(b)
}

// continueUvarint finishes a varint whose first byte has been consumed.
func (d *Decoder) continueUvarint(first byte) (uint64, error) {
	result := uint64(first & 0x7F)
	if first&0x80 == 0 {
		return result, nil
	}

	shift := uint(7)
	for i := 1; i < maxVarintLen; i++ {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		if i == maxVarintLen-1 && b > 1 {
			return 0, fmt.Errorf("%w: varint overflows 64 bits", ErrIncorrectValue)
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}

	return 0, fmt.Errorf("%w: varint longer than %d bytes", ErrIncorrectValue, maxVarintLen)
}

// ReadVarint decodes a two's complement varint (int32, int64).
func (d *Decoder) ReadVarint() (int64, error) {
	v, err := d.ReadUvarint()
	return int64(v), err
}

// ReadZigZag decodes a zigzag varint (sint32, sint64).
func (d *Decoder) ReadZigZag() (int64, error) {
	v, err := d.ReadUvarint()
	return DecodeZigZag64(v), err
}

// SkipVarint skips over a varint without decoding it
func (d *Decoder) SkipVarint() error {
	for i := 0; i < maxVarintLen; i++ {
		b, err := d.readByte()
		if err != nil {
			return err
		}
		if b&0x80 == 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: varint longer than %d bytes", ErrIncorrectValue, maxVarintLen)
}

// readByte reads one byte, reporting any end of input as ErrUnexpectedEndOfStream.
func (d *Decoder) readByte() (byte, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrUnexpectedEndOfStream
		}
		return 0, err
	}
	d.pos++
	return b, nil
}

// UTILITY FUNCTIONS

// DecodeZigZag32 decodes a zigzag-encoded 32-bit integer
func DecodeZigZag32(encoded uint64) int32 {
	return int32((uint32(encoded) >> 1) ^ uint32(-int32(encoded&1)))
}

// DecodeZigZag64 decodes a zigzag-encoded 64-bit integer
func DecodeZigZag64(encoded uint64) int64 {
	return int64((encoded >> 1) ^ uint64(-int64(encoded&1)))
}

// EncodeZigZag32 encodes a signed 32-bit integer using zigzag encoding
func EncodeZigZag32(v int32) uint64 {
	return uint64((uint32(v) << 1) ^ uint32(v>>31))
}

// EncodeZigZag64 encodes a signed 64-bit integer using zigzag encoding
func EncodeZigZag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// SizeUvarint returns the number of bytes needed to encode the given varint
func SizeUvarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
