package schema

import (
	"bytes"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Message is an instance of a Type. Field values are held by position; nil
// means the field is absent. A Message is not safe for concurrent mutation.
type Message struct {
	t      *Type
	values []interface{}
}

// New returns an empty message of type t.
func (t *Type) New() *Message {
	return &Message{t: t, values: make([]interface{}, len(t.fields))}
}

func (m *Message) Type() *Type { return m.t }

// Get returns the value of the named field, or nil when it is absent or not
// declared.
func (m *Message) Get(name string) interface{} {
	f, ok := m.t.byName[name]
	if !ok {
		return nil
	}
	return m.values[f.index]
}

// GetField returns the value held for f.
func (m *Message) GetField(f *Field) interface{} {
	return m.values[f.index]
}

// Has reports whether the named field is present.
func (m *Message) Has(name string) bool {
	return m.Get(name) != nil
}

// Set assigns the named field. Setting nil, or an empty list on a repeated
// field, clears it. Setting a member of a oneof clears the other members.
func (m *Message) Set(name string, value interface{}) error {
	f, ok := m.t.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, m.t.name, name)
	}
	return m.SetField(f, value)
}

// SetField is Set addressed by field.
func (m *Message) SetField(f *Field, value interface{}) error {
	if isAbsent(value) {
		m.values[f.index] = nil
		return nil
	}
	if err := f.check(value); err != nil {
		return fmt.Errorf("%s.%s: %w", m.t.name, f.name, err)
	}
	m.values[f.index] = value
	if f.oneof != nil {
		f.oneof.keep(m.values, f)
	}
	return nil
}

// Clear removes the named field.
func (m *Message) Clear(name string) {
	if f, ok := m.t.byName[name]; ok {
		m.values[f.index] = nil
	}
}

// Reset clears every field.
func (m *Message) Reset() {
	for i := range m.values {
		m.values[i] = nil
	}
}

// WhichOneOf returns the name of the member of group that is set, or "".
func (m *Message) WhichOneOf(group string) string {
	o, ok := m.t.OneOf(group)
	if !ok {
		return ""
	}
	if f := o.Which(m); f != nil {
		return f.name
	}
	return ""
}

// Range calls fn for each present field in declaration order until fn
// returns false.
func (m *Message) Range(fn func(f *Field, value interface{}) bool) {
	for _, f := range m.t.fields {
		v := m.values[f.index]
		if v == nil {
			continue
		}
		if !fn(f, v) {
			return
		}
	}
}

// Equal reports whether both messages have the same type and field values.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.t != other.t {
		return false
	}
	for i := range m.values {
		if !valueEqual(m.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

func (m *Message) String() string {
	if m == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(m.t.name)
	sb.WriteByte('{')
	first := true
	m.Range(func(f *Field, v interface{}) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s: %v", f.name, v)
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}

// Value returns the named field converted to T. ok is false when the field
// is absent or holds another type.
func Value[T any](m *Message, name string) (v T, ok bool) {
	v, ok = m.Get(name).(T)
	return v, ok
}

func (f *Field) check(value interface{}) error {
	if !f.repeated {
		return f.record.check(value)
	}
	list, ok := value.([]interface{})
	if !ok {
		return typeError("repeated "+f.record.Name, value)
	}
	for i, v := range list {
		if err := f.record.check(v); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func valueEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case *Message:
		bv, ok := b.(*Message)
		return ok && av.Equal(bv)
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case *url.URL:
		bv, ok := b.(*url.URL)
		return ok && av.String() == bv.String()
	}
	if reflect.TypeOf(a).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
