package schema

import (
	"github.com/anirudhraja/pureproto/wire"
)

func newMessageRecord(t *Type) *Record {
	return &Record{
		Name:     t.name,
		WireType: wire.WireBytes,
		owner:    t,
		Write: func(e *wire.Encoder, value interface{}) error {
			m, ok := value.(*Message)
			if !ok || m == nil || m.t != t {
				return typeError(t.name, value)
			}
			return e.WriteLengthDelimited(m.encode)
		},
		Read: readStrict(wire.WireBytes, func(d *wire.Decoder) (interface{}, error) {
			sub, err := d.ReadEmbedded()
			if err != nil {
				return nil, err
			}
			m := t.New()
			if err := m.decode(sub); err != nil {
				return nil, err
			}
			return m, nil
		}),
		// A message seen twice is merged, not replaced.
		Accumulate: func(existing interface{}, values []interface{}) (interface{}, error) {
			var err error
			for _, v := range values {
				if existing, err = mergeMessages(existing, v); err != nil {
					return nil, err
				}
			}
			return existing, nil
		},
		Merge: mergeMessages,
		Check: func(value interface{}) error {
			if m, ok := value.(*Message); !ok || m.t != t {
				return typeError(t.name, value)
			}
			return nil
		},
		Coerce: func(value interface{}) (interface{}, error) {
			switch v := value.(type) {
			case *Message:
				return v, nil
			case map[string]interface{}:
				return FromMap(t, v)
			default:
				return nil, typeError(t.name, value)
			}
		},
		Export: func(value interface{}) interface{} {
			if m, ok := value.(*Message); ok {
				return m.AsMap()
			}
			return value
		},
	}
}

func mergeMessages(lhs, rhs interface{}) (interface{}, error) {
	if rhs == nil {
		return lhs, nil
	}
	if lhs == nil {
		return rhs, nil
	}
	l, ok := lhs.(*Message)
	if !ok {
		return nil, typeError("message", lhs)
	}
	r, ok := rhs.(*Message)
	if !ok {
		return nil, typeError("message", rhs)
	}
	if err := l.Merge(r); err != nil {
		return nil, err
	}
	return l, nil
}
