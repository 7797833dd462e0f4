package wire

import "io"

// Encoder handles low-level protobuf wire format encoding. It is the sink the
// record writers append to; WriteTo flushes it to any io.Writer.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new wire format encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 64),
	}
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// WriteTag writes the varint form of a tag.
func (e *Encoder) WriteTag(t Tag) {
	e.WriteUvarint(t.Encode())
}

// WriteRaw appends bytes that are already wire encoded.
func (e *Encoder) WriteRaw(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteTo implements io.WriterTo.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.buf)
	return int64(n), err
}
