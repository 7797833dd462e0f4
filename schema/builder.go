package schema

import (
	"fmt"

	"github.com/anirudhraja/pureproto/wire"
)

type fieldSpec struct {
	number   wire.FieldNumber
	name     string
	record   *Record
	repeated bool
	optional bool
	packing  Packing
	oneof    string
}

// FieldOption adjusts a field declaration.
type FieldOption func(*fieldSpec)

// Repeated declares a list field.
func Repeated() FieldOption {
	return func(s *fieldSpec) { s.repeated = true }
}

// Packed forces the packed encoding.
func Packed() FieldOption {
	return func(s *fieldSpec) { s.packing = ForcePacked }
}

// Unpacked forces one tagged value per element, as proto2 does by default.
func Unpacked() FieldOption {
	return func(s *fieldSpec) { s.packing = ForceUnpacked }
}

// Optional marks a field with explicit presence. Presence is tracked for
// every field, so this only affects how the field is reported.
func Optional() FieldOption {
	return func(s *fieldSpec) { s.optional = true }
}

// InOneOf places the field in the named oneof group, creating the group on
// first use.
func InOneOf(group string) FieldOption {
	return func(s *fieldSpec) { s.oneof = group }
}

// Builder registers the fields of one message type.
//
//	b := schema.NewBuilder("Node")
//	b.Add(1, "value", schema.Int32)
//	b.Add(2, "children", schema.MessageRecord(b.Type()), schema.Repeated())
//	node, err := b.Build()
type Builder struct {
	t      *Type
	specs  []fieldSpec
	groups []string
	extra  map[string][]string
}

func NewBuilder(name string) *Builder {
	t := &Type{name: name}
	t.record = newMessageRecord(t)
	return &Builder{t: t}
}

// Type returns the type under construction, for self-referencing and
// mutually recursive fields. It must not be used to encode or decode before
// Build returns.
func (b *Builder) Type() *Type {
	return b.t
}

// MapEntry marks the type as a map entry.
func (b *Builder) MapEntry() *Builder {
	b.t.mapEntry = true
	return b
}

// Add declares a field. Declaration order is write order.
func (b *Builder) Add(number wire.FieldNumber, name string, rec *Record, opts ...FieldOption) *Builder {
	spec := fieldSpec{number: number, name: name, record: rec}
	for _, opt := range opts {
		opt(&spec)
	}
	if spec.oneof != "" {
		b.group(spec.oneof)
	}
	b.specs = append(b.specs, spec)
	return b
}

// OneOf declares a oneof group by member names. Members may also be placed
// in a group with the InOneOf option.
func (b *Builder) OneOf(name string, members ...string) *Builder {
	b.group(name)
	if b.extra == nil {
		b.extra = make(map[string][]string)
	}
	b.extra[name] = append(b.extra[name], members...)
	return b
}

func (b *Builder) group(name string) {
	for _, g := range b.groups {
		if g == name {
			return
		}
	}
	b.groups = append(b.groups, name)
}

// Build validates the declarations and completes the type. Invalid
// declarations fail with an error wrapping ErrIncorrectAnnotation.
func (b *Builder) Build() (*Type, error) {
	t := b.t
	if t.built {
		return nil, fmt.Errorf("%w: %s is already built", ErrIncorrectAnnotation, t.name)
	}

	// Explicit group memberships are folded into the field specs first.
	for group, members := range b.extra {
		for _, member := range members {
			i := b.specIndex(member)
			if i < 0 {
				return nil, b.annotationError(member, "oneof %s names an undeclared field", group)
			}
			if b.specs[i].oneof != "" && b.specs[i].oneof != group {
				return nil, b.annotationError(member, "field is in oneofs %s and %s", b.specs[i].oneof, group)
			}
			b.specs[i].oneof = group
		}
	}

	fields := make([]*Field, 0, len(b.specs))
	byNumber := make(map[wire.FieldNumber]*Field, len(b.specs))
	byName := make(map[string]*Field, len(b.specs))
	groups := make(map[string]*OneOf, len(b.groups))
	var oneofs []*OneOf
	for _, name := range b.groups {
		o := &OneOf{name: name}
		groups[name] = o
		oneofs = append(oneofs, o)
	}

	for i, spec := range b.specs {
		if err := b.validate(spec); err != nil {
			return nil, err
		}
		if _, dup := byNumber[spec.number]; dup {
			return nil, b.annotationError(spec.name, "number %d is declared twice", spec.number)
		}
		if _, dup := byName[spec.name]; dup {
			return nil, b.annotationError(spec.name, "name is declared twice")
		}

		f := newField(spec, i)
		if spec.oneof != "" {
			o := groups[spec.oneof]
			f.oneof = o
			o.members = append(o.members, f)
		}
		fields = append(fields, f)
		byNumber[f.number] = f
		byName[f.name] = f
	}

	for _, o := range oneofs {
		if len(o.members) == 0 {
			return nil, fmt.Errorf("%w: %s: oneof %s has no members", ErrIncorrectAnnotation, t.name, o.name)
		}
	}
	if t.mapEntry {
		if err := b.validateMapEntry(byNumber); err != nil {
			return nil, err
		}
	}

	t.fields = fields
	t.byNumber = byNumber
	t.byName = byName
	t.oneofs = oneofs
	t.built = true
	return t, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func (b *Builder) validate(spec fieldSpec) error {
	switch {
	case spec.name == "":
		return fmt.Errorf("%w: %s: field %d has no name", ErrIncorrectAnnotation, b.t.name, spec.number)
	case spec.record == nil:
		return b.annotationError(spec.name, "no record")
	case spec.number.IsReserved():
		return b.annotationError(spec.name, "number %d is reserved for the implementation", spec.number)
	case !spec.number.IsValid():
		return b.annotationError(spec.name, "number %d is out of range", spec.number)
	case spec.packing == ForcePacked && !spec.record.Packable():
		return b.annotationError(spec.name, "%s values cannot be packed", spec.record.Name)
	case spec.oneof != "" && spec.repeated:
		return b.annotationError(spec.name, "repeated fields cannot be in a oneof")
	}
	return nil
}

func (b *Builder) validateMapEntry(byNumber map[wire.FieldNumber]*Field) error {
	key, hasKey := byNumber[1]
	_, hasValue := byNumber[2]
	if !hasKey || !hasValue || len(byNumber) != 2 {
		return fmt.Errorf("%w: map entry %s must declare exactly fields 1 and 2", ErrIncorrectAnnotation, b.t.name)
	}
	if key.repeated || key.record.WireType == wire.WireBytes && key.record != String {
		return fmt.Errorf("%w: map entry %s has an invalid key type %s", ErrIncorrectAnnotation, b.t.name, key.record.Name)
	}
	return nil
}

func (b *Builder) specIndex(name string) int {
	for i, s := range b.specs {
		if s.name == name {
			return i
		}
	}
	return -1
}

func (b *Builder) annotationError(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s.%s: %s", ErrIncorrectAnnotation, b.t.name, field, fmt.Sprintf(format, args...))
}
