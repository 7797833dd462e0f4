package schema

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/anirudhraja/pureproto/wire"
)

// Helpers to coerce JSON inputs to integers (accept exponent/float forms if integral)
func coerceToInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int:
		return int64(t), nil
	case json.Number:
		// Try integer first
		if iv, err := t.Int64(); err == nil {
			return iv, nil
		}
		return coerceToInt64(t.String())
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("non-integer numeric for integer field")
		}
		return int64(t), nil
	case string:
		// allow explicit integer strings
		if strings.ContainsAny(t, ".eE") {
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return 0, err
			}
			return coerceToInt64(f)
		}
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("expected integer-like, got %T", v)
	}
}

func coerceToUint64(v interface{}) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case uint32:
		return uint64(t), nil
	case int:
		if t < 0 {
			return 0, fmt.Errorf("negative value for unsigned field")
		}
		return uint64(t), nil
	case json.Number:
		if uv, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return uv, nil
		}
		return coerceToUint64(t.String())
	case float64:
		if t < 0 || t != math.Trunc(t) {
			return 0, fmt.Errorf("non-integer numeric for unsigned field")
		}
		return uint64(t), nil
	case string:
		if strings.ContainsAny(t, ".eE") {
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return 0, err
			}
			return coerceToUint64(f)
		}
		return strconv.ParseUint(t, 10, 64)
	default:
		return 0, fmt.Errorf("expected unsigned-integer-like, got %T", v)
	}
}

func coerceSigned[T int32 | int64](lo, hi int64) func(interface{}) (interface{}, error) {
	return func(value interface{}) (interface{}, error) {
		if v, ok := value.(T); ok {
			return v, nil
		}
		n, err := coerceToInt64(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wire.ErrIncorrectValue, err)
		}
		if n < lo || n > hi {
			return nil, fmt.Errorf("%w: %d out of range", wire.ErrIncorrectValue, n)
		}
		return T(n), nil
	}
}

func coerceUnsigned[T uint32 | uint64](hi uint64) func(interface{}) (interface{}, error) {
	return func(value interface{}) (interface{}, error) {
		if v, ok := value.(T); ok {
			return v, nil
		}
		n, err := coerceToUint64(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wire.ErrIncorrectValue, err)
		}
		if n > hi {
			return nil, fmt.Errorf("%w: %d out of range", wire.ErrIncorrectValue, n)
		}
		return T(n), nil
	}
}

func coerceFloat64(value interface{}) (interface{}, error) {
	switch t := value.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		switch t {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(t, 64)
	default:
		return nil, typeError("double", value)
	}
}

func coerceFloat32(value interface{}) (interface{}, error) {
	if f, ok := value.(float32); ok {
		return f, nil
	}
	f, err := coerceFloat64(value)
	if err != nil {
		return nil, err
	}
	return float32(f.(float64)), nil
}

func coerceBool(value interface{}) (interface{}, error) {
	switch t := value.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	default:
		return nil, typeError("bool", value)
	}
}

func coerceString(value interface{}) (interface{}, error) {
	switch t := value.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return nil, typeError("string", value)
	}
}

// coerceBytes accepts raw bytes or the standard base64 form JSON uses.
func coerceBytes(value interface{}) (interface{}, error) {
	switch t := value.(type) {
	case []byte:
		return t, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wire.ErrIncorrectValue, err)
		}
		return b, nil
	default:
		return nil, typeError("bytes", value)
	}
}
