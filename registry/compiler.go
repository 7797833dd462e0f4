package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/anirudhraja/pureproto/schema"
	"github.com/anirudhraja/pureproto/wire"
)

// compiler turns parsed .proto files into schema types. Every message gets
// a Builder before any field is added, so fields may refer to messages
// declared later, in another file, or to their own message.
type compiler struct {
	r        *Registry
	pending  []*pendingMessage
	builders map[string]*schema.Builder
	enums    map[string]*schema.Enum
	known    map[string]struct{}
	types    []*schema.Type
}

type pendingMessage struct {
	fullName string
	file     *protoFile
	node     *protoparserparser.Message
	builder  *schema.Builder
}

func newCompiler(r *Registry) *compiler {
	c := &compiler{
		r:        r,
		builders: make(map[string]*schema.Builder),
		enums:    make(map[string]*schema.Enum),
		known:    make(map[string]struct{}),
	}
	for name := range r.messages {
		c.known[name] = struct{}{}
	}
	for name := range r.enums {
		c.known[name] = struct{}{}
	}
	return c
}

func (c *compiler) compile(files []*protoFile) error {
	// Pass 1: declare every message and enum name.
	for _, f := range files {
		for _, body := range f.body.ProtoBody {
			if err := c.declare(f, f.pkg, body); err != nil {
				return err
			}
		}
	}

	// Pass 2: add fields, resolving type references.
	for _, p := range c.pending {
		for _, body := range p.node.MessageBody {
			if err := c.define(p, body); err != nil {
				return fmt.Errorf("%s: %s: %w", p.file.path, p.fullName, err)
			}
		}
	}

	// Pass 3: build, then publish only if everything built.
	var errs []error
	for _, p := range c.pending {
		t, err := p.builder.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.file.path, err))
			continue
		}
		c.types = append(c.types, t)
	}
	for _, b := range c.mapEntries() {
		t, err := b.Build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.types = append(c.types, t)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, t := range c.types {
		c.r.messages[t.Name()] = t
	}
	for name, e := range c.enums {
		c.r.enums[name] = e
	}
	return nil
}

func (c *compiler) declare(f *protoFile, prefix string, body interface{}) error {
	switch b := body.(type) {
	case *protoparserparser.Message:
		fullName := joinName(prefix, b.MessageName)
		if err := c.claim(fullName); err != nil {
			return err
		}
		p := &pendingMessage{fullName: fullName, file: f, node: b, builder: schema.NewBuilder(fullName)}
		c.pending = append(c.pending, p)
		c.builders[fullName] = p.builder
		for _, nested := range b.MessageBody {
			if err := c.declare(f, fullName, nested); err != nil {
				return err
			}
		}
		// map fields get a synthesized nested entry message
		for _, nested := range b.MessageBody {
			if mf, ok := nested.(*protoparserparser.MapField); ok {
				entryName := joinName(fullName, mapEntryName(mf.MapName))
				if err := c.claim(entryName); err != nil {
					return err
				}
				c.builders[entryName] = schema.NewBuilder(entryName).MapEntry()
			}
		}
	case *protoparserparser.Enum:
		fullName := joinName(prefix, b.EnumName)
		if err := c.claim(fullName); err != nil {
			return err
		}
		e, err := buildEnum(fullName, b)
		if err != nil {
			return fmt.Errorf("%s: %w", f.path, err)
		}
		c.enums[fullName] = e
	}
	return nil
}

func (c *compiler) claim(fullName string) error {
	if _, dup := c.known[fullName]; dup {
		return fmt.Errorf("%w: %s is declared twice", schema.ErrIncorrectAnnotation, fullName)
	}
	c.known[fullName] = struct{}{}
	return nil
}

func (c *compiler) define(p *pendingMessage, body interface{}) error {
	switch b := body.(type) {
	case *protoparserparser.Field:
		rec, err := c.resolve(b.Type, p.fullName)
		if err != nil {
			return err
		}
		number, err := parseFieldNumber(b.FieldNumber)
		if err != nil {
			return err
		}
		var opts []schema.FieldOption
		if b.IsRepeated {
			opts = append(opts, schema.Repeated())
			if packing, ok := packedOption(b.FieldOptions); ok {
				opts = append(opts, packing)
			} else if p.file.proto2() && rec.Packable() {
				opts = append(opts, schema.Unpacked())
			}
		}
		if b.IsOptional {
			opts = append(opts, schema.Optional())
		}
		p.builder.Add(number, b.FieldName, rec, opts...)

	case *protoparserparser.Oneof:
		for _, of := range b.OneofFields {
			rec, err := c.resolve(of.Type, p.fullName)
			if err != nil {
				return err
			}
			number, err := parseFieldNumber(of.FieldNumber)
			if err != nil {
				return err
			}
			p.builder.Add(number, of.FieldName, rec, schema.InOneOf(b.OneofName))
		}

	case *protoparserparser.MapField:
		entry := c.builders[joinName(p.fullName, mapEntryName(b.MapName))]
		key, ok := schema.ScalarRecord(b.KeyType)
		if !ok {
			return fmt.Errorf("%w: map %s has key type %s", schema.ErrIncorrectAnnotation, b.MapName, b.KeyType)
		}
		value, err := c.resolve(b.Type, p.fullName)
		if err != nil {
			return err
		}
		number, err := parseFieldNumber(b.FieldNumber)
		if err != nil {
			return err
		}
		entry.Add(1, "key", key).Add(2, "value", value)
		p.builder.Add(number, b.MapName, schema.MessageRecord(entry.Type()), schema.Repeated())
	}
	return nil
}

// resolve maps a field's type name to a record, searching scope outwards.
func (c *compiler) resolve(typeName, scope string) (*schema.Record, error) {
	if rec, ok := schema.ScalarRecord(typeName); ok {
		return rec, nil
	}
	fullName, err := getReferencedType(typeName, scope, c.known)
	if err != nil {
		return nil, err
	}
	if b, ok := c.builders[fullName]; ok {
		return schema.MessageRecord(b.Type()), nil
	}
	if e, ok := c.enums[fullName]; ok {
		return e.Record(), nil
	}
	if t, ok := c.r.messages[fullName]; ok {
		return schema.MessageRecord(t), nil
	}
	if e, ok := c.r.enums[fullName]; ok {
		return e.Record(), nil
	}
	return nil, fmt.Errorf("unable to resolve type name: %s", typeName)
}

// mapEntries returns the builders synthesized for map fields.
func (c *compiler) mapEntries() []*schema.Builder {
	var out []*schema.Builder
	for _, p := range c.pending {
		for _, body := range p.node.MessageBody {
			if mf, ok := body.(*protoparserparser.MapField); ok {
				out = append(out, c.builders[joinName(p.fullName, mapEntryName(mf.MapName))])
			}
		}
	}
	return out
}

func buildEnum(fullName string, node *protoparserparser.Enum) (*schema.Enum, error) {
	var values []schema.EnumValue
	for _, body := range node.EnumBody {
		ef, ok := body.(*protoparserparser.EnumField)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(ef.Number, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: enum %s value %s: %v", schema.ErrIncorrectAnnotation, fullName, ef.Ident, err)
		}
		values = append(values, schema.EnumValue{Name: ef.Ident, Number: int32(n)})
	}
	return schema.NewEnum(fullName, values...)
}

func packedOption(options []*protoparserparser.FieldOption) (schema.FieldOption, bool) {
	for _, o := range options {
		if o.OptionName != "packed" {
			continue
		}
		if v, err := strconv.ParseBool(o.Constant); err == nil {
			if v {
				return schema.Packed(), true
			}
			return schema.Unpacked(), true
		}
	}
	return nil, false
}

func parseFieldNumber(raw string) (wire.FieldNumber, error) {
	n, err := strconv.ParseInt(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: field number %q: %v", schema.ErrIncorrectAnnotation, raw, err)
	}
	return wire.FieldNumber(n), nil
}

// mapEntryName follows protoc: map field "string_labels" gets the entry
// message "StringLabelsEntry".
func mapEntryName(field string) string {
	var sb strings.Builder
	upper := true
	for i := 0; i < len(field); i++ {
		ch := field[i]
		if ch == '_' {
			upper = true
			continue
		}
		if upper && ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		upper = false
		sb.WriteByte(ch)
	}
	sb.WriteString("Entry")
	return sb.String()
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
