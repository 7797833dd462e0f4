package wkt

import (
	"fmt"
	"strings"

	"github.com/anirudhraja/pureproto/schema"
)

// DefaultTypeURLPrefix is prepended to the type name by Pack.
const DefaultTypeURLPrefix = "type.googleapis.com/"

// Resolver finds a message type by its full name. registry.Registry
// satisfies it.
type Resolver interface {
	GetMessage(name string) (*schema.Type, error)
}

// Pack wraps m in an Any.
func Pack(m *schema.Message) (*schema.Message, error) {
	data, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	a := Any.New()
	_ = a.Set("type_url", DefaultTypeURLPrefix+m.Type().Name())
	if len(data) > 0 {
		_ = a.Set("value", data)
	}
	return a, nil
}

// TypeName returns the message name part of an Any's type URL.
func TypeName(a *schema.Message) (string, error) {
	if err := checkType(a, Any); err != nil {
		return "", err
	}
	url, _ := schema.Value[string](a, "type_url")
	if url == "" {
		return "", fmt.Errorf("%w: Any has no type_url", schema.ErrUnknownField)
	}
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:], nil
	}
	return url, nil
}

// Unpack decodes the payload of an Any using the type its URL names.
func Unpack(a *schema.Message, types Resolver) (*schema.Message, error) {
	name, err := TypeName(a)
	if err != nil {
		return nil, err
	}
	t, err := types.GetMessage(name)
	if err != nil {
		return nil, fmt.Errorf("unknown Any type %s: %w", name, err)
	}
	data, _ := schema.Value[[]byte](a, "value")
	return t.Unmarshal(data)
}
