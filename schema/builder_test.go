package schema

import (
	"errors"
	"testing"
)

func TestBuilder_IncorrectAnnotations(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Type, error)
	}{
		{"zero number", func() (*Type, error) {
			return NewBuilder("M").Add(0, "a", Int32).Build()
		}},
		{"number above max", func() (*Type, error) {
			return NewBuilder("M").Add(1<<29, "a", Int32).Build()
		}},
		{"reserved number", func() (*Type, error) {
			return NewBuilder("M").Add(19500, "a", Int32).Build()
		}},
		{"duplicate number", func() (*Type, error) {
			return NewBuilder("M").Add(1, "a", Int32).Add(1, "b", Int32).Build()
		}},
		{"duplicate name", func() (*Type, error) {
			return NewBuilder("M").Add(1, "a", Int32).Add(2, "a", Int32).Build()
		}},
		{"nil record", func() (*Type, error) {
			return NewBuilder("M").Add(1, "a", nil).Build()
		}},
		{"empty name", func() (*Type, error) {
			return NewBuilder("M").Add(1, "", Int32).Build()
		}},
		{"packed string", func() (*Type, error) {
			return NewBuilder("M").Add(1, "a", String, Repeated(), Packed()).Build()
		}},
		{"repeated oneof member", func() (*Type, error) {
			return NewBuilder("M").Add(1, "a", Int32, Repeated(), InOneOf("g")).Build()
		}},
		{"oneof names unknown field", func() (*Type, error) {
			return NewBuilder("M").Add(1, "a", Int32).OneOf("g", "a", "missing").Build()
		}},
		{"field in two oneofs", func() (*Type, error) {
			return NewBuilder("M").Add(1, "a", Int32, InOneOf("g")).OneOf("h", "a").Build()
		}},
		{"map entry without value", func() (*Type, error) {
			return NewBuilder("E").MapEntry().Add(1, "key", String).Build()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, ErrIncorrectAnnotation) {
				t.Fatalf("expected ErrIncorrectAnnotation, got %v", err)
			}
		})
	}
}

func TestBuilder_BuildTwice(t *testing.T) {
	b := NewBuilder("M").Add(1, "a", Int32)
	if _, err := b.Build(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrIncorrectAnnotation) {
		t.Fatalf("expected ErrIncorrectAnnotation on second build, got %v", err)
	}
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewBuilder("M").Add(0, "a", Int32).MustBuild()
}

func TestBuilder_FieldOrder(t *testing.T) {
	typ := NewBuilder("Ordered").
		Add(3, "c", Int32).
		Add(1, "a", Int32).
		Add(2, "b", Int32).
		MustBuild()

	var names []string
	for _, f := range typ.Fields() {
		names = append(names, f.Name())
	}
	if len(names) != 3 || names[0] != "c" || names[1] != "a" || names[2] != "b" {
		t.Fatalf("fields out of declaration order: %v", names)
	}

	m := typ.New()
	_ = m.Set("a", int32(1))
	_ = m.Set("b", int32(2))
	_ = m.Set("c", int32(3))
	data, _ := m.Marshal()
	if data[0] != 0x18 {
		t.Errorf("expected field 3 written first, got % X", data)
	}
}

func TestBuilder_OneOfByMembers(t *testing.T) {
	typ := NewBuilder("M").
		Add(1, "a", Int32).
		Add(2, "b", String).
		Add(3, "c", Bool).
		OneOf("choice", "a", "b").
		MustBuild()

	o, ok := typ.OneOf("choice")
	if !ok {
		t.Fatal("oneof choice missing")
	}
	members := o.Members()
	if len(members) != 2 || members[0].Name() != "a" || members[1].Name() != "b" {
		t.Fatalf("unexpected members %v", members)
	}
	if f, _ := typ.Field("c"); f.OneOf() != nil {
		t.Error("c is not in a oneof")
	}
}
