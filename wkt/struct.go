package wkt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/anirudhraja/pureproto/schema"
	"github.com/anirudhraja/pureproto/wire"
)

// NewValue converts a plain JSON-like value into a Value message: nil, bool,
// string, any Go number or json.Number, map[string]interface{} and
// []interface{}.
func NewValue(v interface{}) (*schema.Message, error) {
	m := Value.New()
	var err error
	switch t := v.(type) {
	case nil:
		err = m.Set("null_value", int32(0))
	case bool:
		err = m.Set("bool_value", t)
	case string:
		err = m.Set("string_value", t)
	case json.Number:
		f, perr := strconv.ParseFloat(t.String(), 64)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", wire.ErrIncorrectValue, perr)
		}
		err = m.Set("number_value", f)
	case float64:
		err = m.Set("number_value", t)
	case float32:
		err = m.Set("number_value", float64(t))
	case int:
		err = m.Set("number_value", float64(t))
	case int64:
		err = m.Set("number_value", float64(t))
	case int32:
		err = m.Set("number_value", float64(t))
	case uint64:
		err = m.Set("number_value", float64(t))
	case uint32:
		err = m.Set("number_value", float64(t))
	case map[string]interface{}:
		s, serr := NewStruct(t)
		if serr != nil {
			return nil, serr
		}
		err = m.Set("struct_value", s)
	case []interface{}:
		l, lerr := NewListValue(t)
		if lerr != nil {
			return nil, lerr
		}
		err = m.Set("list_value", l)
	default:
		return nil, fmt.Errorf("%w: %T has no google.protobuf.Value form", wire.ErrIncorrectValue, v)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewStruct converts a map into a Struct message.
func NewStruct(fields map[string]interface{}) (*schema.Message, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]interface{}, 0, len(fields))
	for _, k := range keys {
		v, err := NewValue(fields[k])
		if err != nil {
			return nil, wire.WrapWithField(err, k)
		}
		e := structFieldsEntry.New()
		_ = e.Set("key", k)
		_ = e.Set("value", v)
		entries = append(entries, e)
	}
	s := Struct.New()
	if err := s.Set("fields", entries); err != nil {
		return nil, err
	}
	return s, nil
}

// NewListValue converts a slice into a ListValue message.
func NewListValue(values []interface{}) (*schema.Message, error) {
	list := make([]interface{}, len(values))
	for i, v := range values {
		m, err := NewValue(v)
		if err != nil {
			return nil, wire.WrapWithField(err, strconv.Itoa(i))
		}
		list[i] = m
	}
	l := ListValue.New()
	if err := l.Set("values", list); err != nil {
		return nil, err
	}
	return l, nil
}

// Interface converts a Value, Struct or ListValue message back into plain
// values: nil, bool, string, float64, map[string]interface{} or []interface{}.
func Interface(m *schema.Message) (interface{}, error) {
	if m == nil {
		return nil, nil
	}
	switch m.Type() {
	case Struct:
		out := make(map[string]interface{})
		entries, _ := schema.Value[[]interface{}](m, "fields")
		for _, e := range entries {
			entry := e.(*schema.Message)
			k, _ := schema.Value[string](entry, "key")
			v, err := Interface(valueOrNil(entry.Get("value")))
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case ListValue:
		values, _ := schema.Value[[]interface{}](m, "values")
		out := make([]interface{}, len(values))
		for i, v := range values {
			iv, err := Interface(v.(*schema.Message))
			if err != nil {
				return nil, err
			}
			out[i] = iv
		}
		return out, nil
	case Value:
		switch m.WhichOneOf("kind") {
		case "", "null_value":
			return nil, nil
		case "struct_value", "list_value":
			return Interface(m.Get(m.WhichOneOf("kind")).(*schema.Message))
		default:
			return m.Get(m.WhichOneOf("kind")), nil
		}
	default:
		return nil, fmt.Errorf("%w: %s is not a struct type", schema.ErrTypeMismatch, m.Type().Name())
	}
}

func valueOrNil(v interface{}) *schema.Message {
	m, _ := v.(*schema.Message)
	return m
}
