package schema

import (
	"io"

	"github.com/anirudhraja/pureproto/wire"
)

// Marshal encodes m. Fields are written in declaration order.
func (m *Message) Marshal() ([]byte, error) {
	e := wire.NewEncoder()
	if err := m.encode(e); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Message) MarshalBinary() ([]byte, error) {
	return m.Marshal()
}

// WriteTo encodes m to w.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	e := wire.NewEncoder()
	if err := m.encode(e); err != nil {
		return 0, err
	}
	return e.WriteTo(w)
}

// EncodeTo appends m to e.
func (m *Message) EncodeTo(e *wire.Encoder) error {
	return m.encode(e)
}

func (m *Message) encode(e *wire.Encoder) error {
	for _, f := range m.t.fields {
		if err := f.Write(e, m.values[f.index]); err != nil {
			return wire.WrapWithField(err, f.name)
		}
	}
	return nil
}
