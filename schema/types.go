package schema

import (
	"github.com/anirudhraja/pureproto/wire"
)

// Type is a message definition: an ordered field table plus its oneof
// groups. Types are created with a Builder and are immutable once built.
type Type struct {
	name     string
	fields   []*Field
	byNumber map[wire.FieldNumber]*Field
	byName   map[string]*Field
	oneofs   []*OneOf
	mapEntry bool
	record   *Record
	built    bool
}

func (t *Type) Name() string { return t.name }

// Fields returns the fields in declaration order, which is also write order.
func (t *Type) Fields() []*Field {
	return append([]*Field(nil), t.fields...)
}

// Field looks a field up by its declared name.
func (t *Type) Field(name string) (*Field, bool) {
	f, ok := t.byName[name]
	return f, ok
}

// FieldByNumber looks a field up by number.
func (t *Type) FieldByNumber(n wire.FieldNumber) (*Field, bool) {
	f, ok := t.byNumber[n]
	return f, ok
}

// OneOfs returns the oneof groups in declaration order.
func (t *Type) OneOfs() []*OneOf {
	return append([]*OneOf(nil), t.oneofs...)
}

// OneOf looks a oneof group up by name.
func (t *Type) OneOf(name string) (*OneOf, bool) {
	for _, o := range t.oneofs {
		if o.name == name {
			return o, true
		}
	}
	return nil, false
}

// IsMapEntry reports whether the type is the synthesized entry of a map
// field, with the key as field 1 and the value as field 2.
func (t *Type) IsMapEntry() bool { return t.mapEntry }

// Built reports whether Build has completed for the type.
func (t *Type) Built() bool { return t.built }

// Record returns the record used by fields holding messages of this type.
func (t *Type) Record() *Record { return t.record }

// MessageRecord returns the record for fields holding messages of type t.
// The record exists as soon as the Builder does, so a type may refer to
// itself, or to a type built later, before Build is called.
func MessageRecord(t *Type) *Record {
	return t.record
}
