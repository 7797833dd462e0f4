package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/anirudhraja/pureproto/wire"
)

// FromMap builds a message of type t from plain values keyed by field name
// or lowerCamel JSON name: numbers may be any Go numeric type, json.Number
// or a numeric string; enums may be given by name; embedded messages as
// nested maps; map fields as maps.
func FromMap(t *Type, data map[string]interface{}) (*Message, error) {
	m := t.New()
	// Sorted for stable oneof resolution and error reporting.
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		f := t.fieldByAnyName(key)
		if f == nil {
			return nil, wire.WrapWithField(fmt.Errorf("%w: %s.%s", ErrUnknownField, t.name, key), key)
		}
		v, err := f.coerce(data[key])
		if err != nil {
			return nil, wire.WrapWithField(err, f.name)
		}
		if err := m.SetField(f, v); err != nil {
			return nil, wire.WrapWithField(err, f.name)
		}
	}
	return m, nil
}

// AsMap returns the message as plain values keyed by field name. Enums are
// reported by name, embedded messages as maps, map fields as
// map[string]interface{} keyed by the formatted key.
func (m *Message) AsMap() map[string]interface{} {
	out := make(map[string]interface{}, len(m.values))
	m.Range(func(f *Field, v interface{}) bool {
		out[f.name] = f.export(v)
		return true
	})
	return out
}

// JSONName returns the lowerCamelCase form of the field name.
func (f *Field) JSONName() string {
	return toLowerCamel(f.name)
}

func (t *Type) fieldByAnyName(key string) *Field {
	if f, ok := t.byName[key]; ok {
		return f
	}
	for _, f := range t.fields {
		if f.JSONName() == key {
			return f
		}
	}
	return nil
}

func (f *Field) isMap() bool {
	if !f.repeated || f.record.WireType != wire.WireBytes {
		return false
	}
	entry := f.entryType()
	return entry != nil && entry.mapEntry
}

// entryType returns the message type behind f's record, if any.
func (f *Field) entryType() *Type {
	return f.record.owner
}

func (f *Field) coerce(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if f.isMap() {
		if entries, ok := value.(map[string]interface{}); ok {
			return f.coerceMap(entries)
		}
	}
	if !f.repeated {
		return coerceOne(f.record, value)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, typeError("repeated "+f.record.Name, value)
	}
	if b, ok := value.([]byte); ok && f.record == Bytes {
		// a lone []byte for repeated bytes is ambiguous
		return nil, typeError("repeated bytes", b)
	}
	list := make([]interface{}, rv.Len())
	for i := range list {
		v, err := coerceOne(f.record, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		list[i] = v
	}
	return list, nil
}

func (f *Field) coerceMap(entries map[string]interface{}) (interface{}, error) {
	entry := f.entryType()
	keyField, valueField := entry.byNumber[1], entry.byNumber[2]

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]interface{}, 0, len(entries))
	for _, k := range keys {
		key, err := coerceOne(keyField.record, k)
		if err != nil {
			return nil, fmt.Errorf("map key %q: %w", k, err)
		}
		val, err := valueField.coerce(entries[k])
		if err != nil {
			return nil, fmt.Errorf("map value %q: %w", k, err)
		}
		e := entry.New()
		e.values[keyField.index] = key
		e.values[valueField.index] = val
		list = append(list, e)
	}
	return list, nil
}

func (f *Field) export(value interface{}) interface{} {
	if f.isMap() {
		entries, _ := value.([]interface{})
		entry := f.entryType()
		keyField, valueField := entry.byNumber[1], entry.byNumber[2]
		out := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			em := e.(*Message)
			key := em.values[keyField.index]
			if key == nil {
				key = keyField.record.Zero()
			}
			v := em.values[valueField.index]
			if v == nil {
				v = valueField.record.Zero()
			}
			out[fmt.Sprint(exportOne(keyField.record, key))] = valueField.export(v)
		}
		return out
	}
	if !f.repeated {
		return exportOne(f.record, value)
	}
	list, _ := value.([]interface{})
	out := make([]interface{}, len(list))
	for i, v := range list {
		out[i] = exportOne(f.record, v)
	}
	return out
}

func coerceOne(rec *Record, value interface{}) (interface{}, error) {
	if rec.Coerce == nil {
		return value, rec.check(value)
	}
	v, err := rec.Coerce(value)
	if errors.Is(err, wire.ErrIncorrectValue) || errors.Is(err, ErrUnknownField) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", wire.ErrIncorrectValue, rec.Name, err)
	}
	return v, nil
}

func exportOne(rec *Record, value interface{}) interface{} {
	if rec.Export == nil {
		return value
	}
	return rec.Export(value)
}

// toLowerCamel converts snake_case to lowerCamelCase.
func toLowerCamel(s string) string {
	out := make([]byte, 0, len(s))
	upperNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			upperNext = len(out) > 0
			continue
		}
		switch {
		case len(out) == 0 && c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case upperNext && c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		}
		upperNext = false
		out = append(out, c)
	}
	return string(out)
}
