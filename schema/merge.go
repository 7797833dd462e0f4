package schema

import (
	"fmt"
)

// Merge folds rhs into m field by field: scalars from rhs win when present,
// repeated fields are concatenated and embedded messages merge recursively.
// A oneof member present in rhs replaces whichever member m had.
//
// rhs is consumed: its values move into m and rhs is left empty. When Merge
// fails, m keeps its previous field values and rhs is left as it was.
func (m *Message) Merge(rhs *Message) error {
	if rhs == nil || rhs == m {
		return nil
	}
	if rhs.t != m.t {
		return fmt.Errorf("%w: cannot merge %s into %s", ErrTypeMismatch, rhs.t.name, m.t.name)
	}

	if err := m.checkMerge(rhs); err != nil {
		return err
	}

	staged := append([]interface{}(nil), m.values...)
	for _, f := range m.t.fields {
		r := rhs.values[f.index]
		if r == nil {
			continue
		}
		v, err := f.Merge(staged[f.index], r)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", m.t.name, f.name, err)
		}
		staged[f.index] = v
		if f.oneof != nil {
			f.oneof.keep(staged, f)
		}
	}
	copy(m.values, staged)
	rhs.Reset()
	return nil
}

// checkMerge validates every value rhs would contribute, descending into
// embedded messages that merge in place, so Merge fails before changing
// anything.
func (m *Message) checkMerge(rhs *Message) error {
	for _, f := range m.t.fields {
		r := rhs.values[f.index]
		if r == nil {
			continue
		}
		if err := f.check(r); err != nil {
			return fmt.Errorf("%s.%s: %w", m.t.name, f.name, err)
		}
		if f.repeated || f.record.owner == nil {
			continue
		}
		if l, ok := m.values[f.index].(*Message); ok {
			if err := l.checkMerge(r.(*Message)); err != nil {
				return fmt.Errorf("%s.%s: %w", m.t.name, f.name, err)
			}
		}
	}
	return nil
}
