package pureproto

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anirudhraja/pureproto/config"
	"github.com/anirudhraja/pureproto/registry"
	"github.com/anirudhraja/pureproto/schema"
	"github.com/anirudhraja/pureproto/wire"
	"github.com/anirudhraja/pureproto/wkt"
)

// ===== SCHEMA-AWARE API =====

// Codec provides schema-aware protobuf operations without generated code.
// It is safe for concurrent use once its schemas are loaded.
type Codec struct {
	registry       *registry.Registry
	opts           wire.DecodeOptions
	unwrapWrappers bool
	wellKnownJSON  bool
	log            zerolog.Logger
}

type Option func(*Codec)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Codec) { c.log = log }
}

// WithRegistry makes the codec share an existing registry.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Codec) { c.registry = r }
}

// WithDecodeOptions sets the options every decode starts from.
func WithDecodeOptions(opts wire.DecodeOptions) Option {
	return func(c *Codec) { c.opts = opts }
}

// WithUnwrapWrappers controls whether Parse reports wrapper messages such
// as google.protobuf.StringValue as their plain value. It is on by default.
func WithUnwrapWrappers(on bool) Option {
	return func(c *Codec) { c.unwrapWrappers = on }
}

// WithWellKnownJSON makes Parse report well-known types in their JSON
// forms: RFC 3339 strings for Timestamp, "1.5s" for Duration, plain values
// for Struct, and {"@type": ...} objects for Any.
func WithWellKnownJSON(on bool) Option {
	return func(c *Codec) { c.wellKnownJSON = on }
}

// New creates a new Codec.
func New(opts ...Option) *Codec {
	c := &Codec{
		unwrapWrappers: true,
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = registry.NewRegistry(registry.WithLogger(c.log))
	}
	return c
}

// NewFromConfig creates a Codec from cfg and loads the schema files it
// names.
func NewFromConfig(cfg config.Config, log zerolog.Logger) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := registry.NewRegistry(
		registry.WithLogger(log),
		registry.WithProtoPaths(cfg.Schema.ProtoPaths...),
	)
	c := New(
		WithLogger(log),
		WithRegistry(r),
		WithDecodeOptions(cfg.DecodeOptions()),
		WithUnwrapWrappers(cfg.Decode.UnwrapWrappers),
		WithWellKnownJSON(cfg.Decode.WellKnownJSON),
	)
	for _, path := range cfg.Schema.Files {
		if err := c.LoadSchema(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return c, nil
}

// LoadSchema loads a .proto file or a directory of them.
func (c *Codec) LoadSchema(path string) error {
	if err := c.registry.LoadSchema(path); err != nil {
		return err
	}
	c.log.Info().Str("path", path).Msg("schema loaded")
	return nil
}

// Register adds a type built with schema.Builder.
func (c *Codec) Register(t *schema.Type) error {
	return c.registry.Register(t)
}

// Marshal encodes a message to protobuf bytes.
func (c *Codec) Marshal(m *schema.Message) ([]byte, error) {
	return m.Marshal()
}

// Unmarshal decodes protobuf bytes as the named message type.
func (c *Codec) Unmarshal(data []byte, messageType string) (*schema.Message, error) {
	t, err := c.registry.GetMessage(messageType)
	if err != nil {
		return nil, err
	}
	return c.decode(wire.NewBytesDecoder(data, c.opts), t)
}

// WriteTo writes the encoding of m to w.
func (c *Codec) WriteTo(w io.Writer, m *schema.Message) (int64, error) {
	return m.WriteTo(w)
}

// ReadFrom decodes one message of the named type from r, reading until r
// is exhausted.
func (c *Codec) ReadFrom(r io.Reader, messageType string) (*schema.Message, error) {
	t, err := c.registry.GetMessage(messageType)
	if err != nil {
		return nil, err
	}
	return c.decode(wire.NewDecoder(r, c.opts), t)
}

// Merge folds rhs into lhs. rhs is left empty.
func (c *Codec) Merge(lhs, rhs *schema.Message) error {
	return lhs.Merge(rhs)
}

func (c *Codec) decode(d *wire.Decoder, t *schema.Type) (*schema.Message, error) {
	m, err := t.Decode(d)
	if err != nil {
		return nil, err
	}
	if n := d.Skipped(); n > 0 {
		c.log.Debug().Str("type", t.Name()).Int("skipped", n).Msg("skipped unknown fields")
	}
	return m, nil
}

// Parse decodes protobuf bytes into plain Go values keyed by field name.
func (c *Codec) Parse(data []byte, messageType string) (map[string]interface{}, error) {
	m, err := c.Unmarshal(data, messageType)
	if err != nil {
		return nil, err
	}
	return c.toMap(m), nil
}

// MarshalMap encodes plain Go values keyed by field name. Well-known type
// fields accept their JSON forms as well as their message shape.
func (c *Codec) MarshalMap(data map[string]interface{}, messageType string) ([]byte, error) {
	t, err := c.registry.GetMessage(messageType)
	if err != nil {
		return nil, err
	}
	data, err = c.normalizeInput(t, data)
	if err != nil {
		return nil, err
	}
	m, err := schema.FromMap(t, data)
	if err != nil {
		return nil, err
	}
	return m.Marshal()
}

// UnmarshalInto decodes protobuf bytes into the struct v points to. Struct
// fields match by their json tag, or by name ignoring case.
func (c *Codec) UnmarshalInto(data []byte, messageType string, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("unmarshal target must be a pointer to struct")
	}
	result, err := c.Parse(data, messageType)
	if err != nil {
		return err
	}
	return mapToStruct(result, rv.Elem())
}

func (c *Codec) toMap(m *schema.Message) map[string]interface{} {
	out := m.AsMap()
	if !c.unwrapWrappers && !c.wellKnownJSON {
		return out
	}
	m.Range(func(f *schema.Field, v interface{}) bool {
		t := f.Record().MessageType()
		if t == nil || t.IsMapEntry() {
			return true
		}
		if !f.IsRepeated() {
			out[f.Name()] = c.exportMessage(v.(*schema.Message))
			return true
		}
		list := v.([]interface{})
		values := make([]interface{}, len(list))
		for i, e := range list {
			values[i] = c.exportMessage(e.(*schema.Message))
		}
		out[f.Name()] = values
		return true
	})
	return out
}

func (c *Codec) exportMessage(m *schema.Message) interface{} {
	if c.wellKnownJSON {
		if v, ok, err := wkt.ToJSON(m, c.registry); ok && err == nil {
			return v
		}
	}
	if c.unwrapWrappers && wkt.IsWrapper(m.Type()) {
		v, _ := wkt.Unwrap(m)
		return v
	}
	return c.toMap(m)
}

// normalizeInput rewrites the JSON-native forms of well-known types, such
// as a plain string for a StringValue or an RFC 3339 string for a
// Timestamp, into messages.
func (c *Codec) normalizeInput(t *schema.Type, data map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(data))
	for key, v := range data {
		out[key] = v
		f, ok := t.Field(key)
		if !ok {
			continue
		}
		mt := f.Record().MessageType()
		if mt == nil || mt.IsMapEntry() {
			continue
		}
		if !f.IsRepeated() {
			nv, err := c.normalizeValue(mt, v)
			if err != nil {
				return nil, wire.WrapWithField(err, key)
			}
			out[key] = nv
			continue
		}
		list, ok := v.([]interface{})
		if !ok {
			continue
		}
		values := make([]interface{}, len(list))
		for i, e := range list {
			nv, err := c.normalizeValue(mt, e)
			if err != nil {
				return nil, wire.WrapWithField(fmt.Errorf("element %d: %w", i, err), key)
			}
			values[i] = nv
		}
		out[key] = values
	}
	return out, nil
}

func (c *Codec) normalizeValue(t *schema.Type, v interface{}) (interface{}, error) {
	if m, ok, err := wkt.FromJSON(t, v, c.registry); ok {
		return m, err
	}
	if nested, ok := v.(map[string]interface{}); ok {
		return c.normalizeInput(t, nested)
	}
	return v, nil
}

// mapToStruct maps parsed result to struct fields
func mapToStruct(data map[string]interface{}, rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fieldValue := rv.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		value, ok := lookupStructField(data, field)
		if !ok {
			continue
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set field %s: %v", field.Name, err)
		}
	}
	return nil
}

func lookupStructField(data map[string]interface{}, field reflect.StructField) (interface{}, bool) {
	if tag := strings.Split(field.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
		v, ok := data[tag]
		return v, ok
	}
	for key, v := range data {
		if strings.EqualFold(strings.ReplaceAll(key, "_", ""), field.Name) {
			return v, true
		}
	}
	return nil, false
}

// setFieldValue sets a struct field with type conversion
func setFieldValue(fieldValue reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}

	sourceValue := reflect.ValueOf(value)
	if sourceValue.Type().AssignableTo(fieldValue.Type()) {
		fieldValue.Set(sourceValue)
		return nil
	}

	sameFamily := (sourceValue.Kind() == reflect.String) == (fieldValue.Kind() == reflect.String)
	if sameFamily && sourceValue.Type().ConvertibleTo(fieldValue.Type()) {
		fieldValue.Set(sourceValue.Convert(fieldValue.Type()))
		return nil
	}

	if nested, ok := value.(map[string]interface{}); ok && fieldValue.Kind() == reflect.Struct {
		return mapToStruct(nested, fieldValue)
	}

	if list, ok := value.([]interface{}); ok && fieldValue.Kind() == reflect.Slice {
		out := reflect.MakeSlice(fieldValue.Type(), len(list), len(list))
		for i, e := range list {
			if err := setFieldValue(out.Index(i), e); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		fieldValue.Set(out)
		return nil
	}

	return fmt.Errorf("cannot convert %T to %s", value, fieldValue.Type())
}

// ===== SCHEMA-LESS API =====

// RawField is one field read without a schema.
type RawField struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// ParseRaw decodes protobuf bytes without a schema. Fields are keyed
// "field_<number>"; a number seen more than once maps to a []RawField in
// wire order.
func (c *Codec) ParseRaw(data []byte) (map[string]interface{}, error) {
	d := wire.NewBytesDecoder(data, c.opts)
	result := make(map[string]interface{})
	for {
		v, ok, err := d.ReadField()
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		key := fmt.Sprintf("field_%d", v.FieldNumber)
		field := RawField{Type: rawTypeName(v.WireType), Value: v.Data}
		switch prev := result[key].(type) {
		case nil:
			result[key] = field
		case RawField:
			result[key] = []RawField{prev, field}
		case []RawField:
			result[key] = append(prev, field)
		}
	}
}

func rawTypeName(wt wire.WireType) string {
	switch wt {
	case wire.WireVarint:
		return "varint"
	case wire.WireFixed64:
		return "fixed64"
	case wire.WireBytes:
		return "bytes"
	case wire.WireFixed32:
		return "fixed32"
	default:
		return "group"
	}
}

// ===== REGISTRY ACCESS =====

func (c *Codec) Registry() *registry.Registry { return c.registry }
func (c *Codec) ListMessages() []string        { return c.registry.ListMessages() }
func (c *Codec) ListEnums() []string           { return c.registry.ListEnums() }
