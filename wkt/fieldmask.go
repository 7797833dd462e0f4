package wkt

import (
	"strings"

	"github.com/anirudhraja/pureproto/schema"
)

// NewFieldMask returns a FieldMask with the given paths.
func NewFieldMask(paths ...string) *schema.Message {
	m := FieldMask.New()
	list := make([]interface{}, len(paths))
	for i, p := range paths {
		list[i] = p
	}
	_ = m.Set("paths", list)
	return m
}

// ParseFieldMask parses the JSON form: comma separated lowerCamel paths.
func ParseFieldMask(s string) *schema.Message {
	var paths []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, camelToSnake(p))
		}
	}
	return NewFieldMask(paths...)
}

// Paths returns the paths of a FieldMask.
func Paths(m *schema.Message) []string {
	list, _ := schema.Value[[]interface{}](m, "paths")
	out := make([]string, len(list))
	for i, p := range list {
		out[i], _ = p.(string)
	}
	return out
}

// camelToSnake converts lowerCamelCase to snake_case.
func camelToSnake(s string) string {
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i != 0 {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
