package schema

// OneOf is a named group of fields of which at most one is set.
type OneOf struct {
	name    string
	members []*Field
}

func (o *OneOf) Name() string { return o.name }

// Members returns the group's fields in declaration order.
func (o *OneOf) Members() []*Field {
	return append([]*Field(nil), o.members...)
}

// Which returns the first member set on m, or nil.
func (o *OneOf) Which(m *Message) *Field {
	for _, f := range o.members {
		if m.values[f.index] != nil {
			return f
		}
	}
	return nil
}

// keep clears every member other than keep.
func (o *OneOf) keep(values []interface{}, keep *Field) {
	for _, f := range o.members {
		if f != keep {
			values[f.index] = nil
		}
	}
}
