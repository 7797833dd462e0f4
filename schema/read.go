package schema

import (
	"io"

	"github.com/anirudhraja/pureproto/wire"
)

// Read decodes one message from r, which must end where the message ends.
func (t *Type) Read(r io.Reader) (*Message, error) {
	return t.Decode(wire.NewDecoder(r, wire.DecodeOptions{}))
}

// Unmarshal decodes a message from data.
func (t *Type) Unmarshal(data []byte) (*Message, error) {
	return t.Decode(wire.NewBytesDecoder(data, wire.DecodeOptions{}))
}

// Decode reads a message from d until its source is exhausted.
func (t *Type) Decode(d *wire.Decoder) (*Message, error) {
	m := t.New()
	if err := m.decode(d); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadFrom decodes from r into m. Fields already set are combined with the
// decoded ones the same way repeated wire occurrences are.
func (m *Message) ReadFrom(r io.Reader) (int64, error) {
	d := wire.NewDecoder(r, wire.DecodeOptions{})
	err := m.decode(d)
	return d.Offset(), err
}

// UnmarshalBinary replaces the contents of m with the message in data.
func (m *Message) UnmarshalBinary(data []byte) error {
	m.Reset()
	return m.decode(wire.NewBytesDecoder(data, wire.DecodeOptions{}))
}

// DecodeFrom is UnmarshalBinary with a caller supplied decoder.
func (m *Message) DecodeFrom(d *wire.Decoder) error {
	return m.decode(d)
}

func (m *Message) decode(d *wire.Decoder) error {
	for {
		tag, ok, err := d.ReadTag()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		f, known := m.t.byNumber[tag.Number]
		if !known {
			if err := d.Skip(tag.WireType); err != nil {
				return err
			}
			continue
		}

		values, err := f.Read(d, tag.WireType)
		if err != nil {
			return wire.WrapWithField(err, f.name)
		}
		v, err := f.Accumulate(m.values[f.index], values)
		if err != nil {
			return wire.WrapWithField(err, f.name)
		}
		m.values[f.index] = v
		if f.oneof != nil && v != nil {
			f.oneof.keep(m.values, f)
		}
	}
}
