package wkt

import (
	"fmt"

	"github.com/anirudhraja/pureproto/schema"
)

// Wrap returns the wrapper message holding v, chosen by v's Go type.
func Wrap(v interface{}) (*schema.Message, error) {
	var t *schema.Type
	switch v.(type) {
	case float64:
		t = DoubleValue
	case float32:
		t = FloatValue
	case int64:
		t = Int64Value
	case uint64:
		t = UInt64Value
	case int32:
		t = Int32Value
	case uint32:
		t = UInt32Value
	case bool:
		t = BoolValue
	case string:
		t = StringValue
	case []byte:
		t = BytesValue
	default:
		return nil, fmt.Errorf("no wrapper type for %T", v)
	}
	m := t.New()
	if err := m.Set("value", v); err != nil {
		return nil, err
	}
	return m, nil
}

// Unwrap returns the value held by a wrapper message. An absent value is
// the zero value of the wrapped type; a nil message yields nil.
func Unwrap(m *schema.Message) (interface{}, error) {
	if m == nil {
		return nil, nil
	}
	if !IsWrapper(m.Type()) {
		return nil, fmt.Errorf("%w: %s is not a wrapper type", schema.ErrTypeMismatch, m.Type().Name())
	}
	if v := m.Get("value"); v != nil {
		return v, nil
	}
	return zeroValues[m.Type()], nil
}

// IsWrapper reports whether t is one of the wrapper types.
func IsWrapper(t *schema.Type) bool {
	_, ok := zeroValues[t]
	return ok
}

var zeroValues = map[*schema.Type]interface{}{
	DoubleValue: float64(0),
	FloatValue:  float32(0),
	Int64Value:  int64(0),
	UInt64Value: uint64(0),
	Int32Value:  int32(0),
	UInt32Value: uint32(0),
	BoolValue:   false,
	StringValue: "",
	BytesValue:  []byte{},
}
