package wkt

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anirudhraja/pureproto/schema"
)

// FromJSON converts the JSON mapping's native form of a well-known type
// into its message: RFC 3339 strings for Timestamp, "1.5s" strings for
// Duration, comma separated paths for FieldMask, plain values for Struct,
// Value, ListValue and the wrappers, and {"@type": ...} objects for Any.
// ok is false when t is not a well-known type or value is already in
// message shape. types resolves the payload type of an Any.
func FromJSON(t *schema.Type, value interface{}, types Resolver) (m *schema.Message, ok bool, err error) {
	if value == nil {
		return nil, false, nil
	}
	if s, isString := value.(string); isString {
		switch t {
		case Timestamp:
			m, err = ParseTimestamp(s)
			return m, true, err
		case Duration:
			m, err = ParseDuration(s)
			return m, true, err
		case FieldMask:
			return ParseFieldMask(s), true, nil
		}
	}

	switch t {
	case Any:
		if obj, isMap := value.(map[string]interface{}); isMap {
			if _, shaped := obj["type_url"]; !shaped {
				m, err = anyFromJSON(obj, types)
				return m, true, err
			}
		}
	case Struct:
		if obj, isMap := value.(map[string]interface{}); isMap {
			m, err = NewStruct(obj)
			return m, true, err
		}
	case Value:
		if obj, isMap := value.(map[string]interface{}); isMap && isValueShaped(obj) {
			return nil, false, nil
		}
		m, err = NewValue(value)
		return m, true, err
	case ListValue:
		if list, isList := value.([]interface{}); isList {
			m, err = NewListValue(list)
			return m, true, err
		}
	default:
		if IsWrapper(t) {
			if _, isMap := value.(map[string]interface{}); !isMap {
				m, err = schema.FromMap(t, map[string]interface{}{"value": value})
				return m, true, err
			}
		}
	}
	return nil, false, nil
}

func anyFromJSON(obj map[string]interface{}, types Resolver) (*schema.Message, error) {
	typeURL, _ := obj["@type"].(string)
	if typeURL == "" {
		return nil, fmt.Errorf("%w: Any missing @type", schema.ErrUnknownField)
	}
	if !strings.Contains(typeURL, "/") {
		typeURL = DefaultTypeURLPrefix + typeURL
	}

	a := Any.New()
	_ = a.Set("type_url", typeURL)
	if raw, ok := obj["value"].(string); ok && len(obj) == 2 {
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("Any.value not base64: %w", err)
		}
		return a, a.Set("value", data)
	}

	payload := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		if k != "@type" {
			payload[k] = v
		}
	}
	name, _ := TypeName(a)
	t, err := types.GetMessage(name)
	if err != nil {
		return nil, fmt.Errorf("unknown Any type %s: %w", name, err)
	}
	inner, err := schema.FromMap(t, payload)
	if err != nil {
		return nil, err
	}
	data, err := inner.Marshal()
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		_ = a.Set("value", data)
	}
	return a, nil
}

// isValueShaped reports whether obj already names a kind of Value.
func isValueShaped(obj map[string]interface{}) bool {
	if len(obj) != 1 {
		return false
	}
	for k := range obj {
		switch k {
		case "null_value", "number_value", "string_value", "bool_value", "struct_value", "list_value":
			return true
		}
	}
	return false
}

// ToJSON converts a well-known message into its JSON mapping's native
// form, the inverse of FromJSON. ok is false for other types. An Any whose
// payload type types cannot resolve keeps its message shape.
func ToJSON(m *schema.Message, types Resolver) (v interface{}, ok bool, err error) {
	switch t := m.Type(); {
	case t == Timestamp:
		tm, err := TimestampTime(m)
		if err != nil {
			return nil, true, err
		}
		return tm.Format("2006-01-02T15:04:05") + fraction(int32(tm.Nanosecond())) + "Z", true, nil
	case t == Duration:
		sec, ns := secondsNanos(m)
		return formatDuration(sec, ns), true, nil
	case t == FieldMask:
		paths := Paths(m)
		for i, p := range paths {
			paths[i] = snakeToCamel(p)
		}
		return strings.Join(paths, ","), true, nil
	case t == Struct || t == Value || t == ListValue:
		v, err = Interface(m)
		return v, true, err
	case t == Any:
		inner, err := Unpack(m, types)
		if err != nil {
			return nil, false, nil
		}
		out := inner.AsMap()
		name, _ := TypeName(m)
		out["@type"] = DefaultTypeURLPrefix + name
		return out, true, nil
	case IsWrapper(t):
		v, err = Unwrap(m)
		return v, true, err
	}
	return nil, false, nil
}

func formatDuration(sec int64, ns int32) string {
	sign := ""
	if sec < 0 || ns < 0 {
		sign = "-"
		sec, ns = -sec, -ns
	}
	return fmt.Sprintf("%s%d%ss", sign, sec, fraction(ns))
}

// fraction formats nanoseconds as 0, 3, 6 or 9 fractional digits.
func fraction(ns int32) string {
	if ns == 0 {
		return ""
	}
	frac := fmt.Sprintf("%09d", ns)
	for len(frac) > 3 && strings.HasSuffix(frac, "000") {
		frac = frac[:len(frac)-3]
	}
	return "." + frac
}

func snakeToCamel(s string) string {
	out := make([]byte, 0, len(s))
	upper := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}
