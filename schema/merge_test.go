package schema

import (
	"errors"
	"reflect"
	"testing"

	"github.com/anirudhraja/pureproto/wire"
)

var testMergeType = func() *Type {
	b := NewBuilder("Merged")
	b.Add(1, "a", Int32)
	b.Add(2, "list", Int32, Repeated())
	b.Add(3, "inner", MessageRecord(NewBuilder("MergedInner").Add(1, "x", Int32).Add(2, "y", String).MustBuild()))
	b.Add(4, "s", String, InOneOf("pick"))
	b.Add(5, "n", Int32, InOneOf("pick"))
	return b.MustBuild()
}()

func newInner(t *testing.T, x interface{}, y interface{}) *Message {
	t.Helper()
	f, _ := testMergeType.Field("inner")
	m := f.Record().MessageType().New()
	if err := m.Set("x", x); err != nil {
		t.Fatal(err)
	}
	if err := m.Set("y", y); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMerge(t *testing.T) {
	lhs := testMergeType.New()
	_ = lhs.Set("a", int32(1))
	_ = lhs.Set("list", []interface{}{int32(1), int32(2)})
	_ = lhs.Set("inner", newInner(t, int32(10), "left"))
	_ = lhs.Set("s", "left")

	rhs := testMergeType.New()
	_ = rhs.Set("list", []interface{}{int32(3)})
	_ = rhs.Set("inner", newInner(t, nil, "right"))
	_ = rhs.Set("n", int32(9))

	if err := lhs.Merge(rhs); err != nil {
		t.Fatal(err)
	}

	if v, _ := Value[int32](lhs, "a"); v != 1 {
		t.Errorf("a absent in rhs should keep lhs, got %d", v)
	}
	list, _ := Value[[]interface{}](lhs, "list")
	if len(list) != 3 || list[2] != int32(3) {
		t.Errorf("lists should concatenate, got %v", list)
	}
	inner, _ := Value[*Message](lhs, "inner")
	if x, _ := Value[int32](inner, "x"); x != 10 {
		t.Errorf("inner.x should survive, got %v", inner)
	}
	if y, _ := Value[string](inner, "y"); y != "right" {
		t.Errorf("inner.y should come from rhs, got %v", inner)
	}
	if got := lhs.WhichOneOf("pick"); got != "n" {
		t.Errorf("the rhs oneof member should win, got %q", got)
	}
	if lhs.Has("s") {
		t.Error("s should be cleared by the merged oneof member")
	}
	if rhs.Has("list") || rhs.Has("n") {
		t.Error("rhs is consumed by the merge")
	}
}

func TestMerge_KeepsLhsOneOfWhenRhsHasNone(t *testing.T) {
	lhs := testMergeType.New()
	_ = lhs.Set("n", int32(3))
	rhs := testMergeType.New()
	_ = rhs.Set("a", int32(4))

	if err := lhs.Merge(rhs); err != nil {
		t.Fatal(err)
	}
	if got := lhs.WhichOneOf("pick"); got != "n" {
		t.Errorf("expected n to stay selected, got %q", got)
	}
}

func TestMerge_MatchesConcatenatedDecode(t *testing.T) {
	a := testMergeType.New()
	_ = a.Set("a", int32(1))
	_ = a.Set("list", []interface{}{int32(1)})
	_ = a.Set("inner", newInner(t, int32(5), nil))
	b := testMergeType.New()
	_ = b.Set("a", int32(2))
	_ = b.Set("list", []interface{}{int32(2)})
	_ = b.Set("inner", newInner(t, nil, "z"))

	da, _ := a.Marshal()
	db, _ := b.Marshal()
	decoded, err := testMergeType.Unmarshal(append(da, db...))
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Merge(b); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(decoded) {
		t.Errorf("merge %v differs from decoding the concatenation %v", a, decoded)
	}
}

func TestMerge_TypeMismatch(t *testing.T) {
	err := testMergeType.New().Merge(testInner.New())
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if err := testMergeType.New().Merge(nil); err != nil {
		t.Fatalf("merging nil is a no-op, got %v", err)
	}
}

func TestMerge_Literals(t *testing.T) {
	tests := []struct {
		name  string
		field string
		lhs   interface{}
		rhs   interface{}
		want  interface{}
	}{
		{
			name:  "singular scalar takes rhs",
			field: "a",
			lhs:   int32(1),
			rhs:   int32(2),
			want:  int32(2),
		},
		{
			name:  "repeated concatenates",
			field: "list",
			lhs:   []interface{}{int32(1), int32(2)},
			rhs:   []interface{}{int32(3), int32(4)},
			want:  []interface{}{int32(1), int32(2), int32(3), int32(4)},
		},
		{
			name:  "absent lhs takes rhs",
			field: "list",
			rhs:   []interface{}{int32(3)},
			want:  []interface{}{int32(3)},
		},
		{
			name:  "absent rhs keeps lhs",
			field: "a",
			lhs:   int32(7),
			want:  int32(7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lhs, rhs := testMergeType.New(), testMergeType.New()
			if err := lhs.Set(tt.field, tt.lhs); err != nil {
				t.Fatal(err)
			}
			if err := rhs.Set(tt.field, tt.rhs); err != nil {
				t.Fatal(err)
			}
			if err := lhs.Merge(rhs); err != nil {
				t.Fatal(err)
			}
			if got := lhs.Get(tt.field); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_SharedListStaysIndependent(t *testing.T) {
	shared := make([]interface{}, 1, 8)
	shared[0] = int32(1)

	m1, m2 := testMergeType.New(), testMergeType.New()
	_ = m1.Set("list", shared)
	_ = m2.Set("list", m1.Get("list"))

	r1, r2 := testMergeType.New(), testMergeType.New()
	_ = r1.Set("list", []interface{}{int32(5)})
	_ = r2.Set("list", []interface{}{int32(7)})
	if err := m1.Merge(r1); err != nil {
		t.Fatal(err)
	}
	if err := m2.Merge(r2); err != nil {
		t.Fatal(err)
	}

	if got := m1.Get("list"); !reflect.DeepEqual(got, []interface{}{int32(1), int32(5)}) {
		t.Errorf("m1 list: got %v", got)
	}
	if got := m2.Get("list"); !reflect.DeepEqual(got, []interface{}{int32(1), int32(7)}) {
		t.Errorf("m2 list: got %v", got)
	}
}

func TestAccumulateAppend_DoesNotWriteSharedCapacity(t *testing.T) {
	shared := make([]interface{}, 1, 8)
	shared[0] = int32(1)

	a, _ := AccumulateAppend(shared, []interface{}{int32(5)})
	b, _ := AccumulateAppend(shared, []interface{}{int32(7)})
	if got := a.([]interface{})[1]; got != int32(5) {
		t.Errorf("first append was overwritten: got %v", got)
	}
	if got := b.([]interface{})[1]; got != int32(7) {
		t.Errorf("second append: got %v", got)
	}
}

func TestMerge_FailureChangesNothing(t *testing.T) {
	innerField, _ := testMergeType.Field("inner")
	innerType := innerField.Record().MessageType()
	yField, _ := innerType.Field("y")

	t.Run("top level", func(t *testing.T) {
		lhs := testMergeType.New()
		_ = lhs.Set("list", []interface{}{int32(1)})
		rhs := testMergeType.New()
		_ = rhs.Set("list", []interface{}{int32(2)})
		rhs.values[innerField.index] = "not a message"

		if err := lhs.Merge(rhs); !errors.Is(err, wire.ErrIncorrectValue) {
			t.Fatalf("expected ErrIncorrectValue, got %v", err)
		}
		if got := lhs.Get("list"); !reflect.DeepEqual(got, []interface{}{int32(1)}) {
			t.Errorf("lhs list changed to %v", got)
		}
		if !rhs.Has("list") {
			t.Error("rhs should not be consumed by a failed merge")
		}
	})

	t.Run("nested", func(t *testing.T) {
		lhs := testMergeType.New()
		_ = lhs.Set("a", int32(1))
		_ = lhs.Set("inner", newInner(t, int32(10), "left"))
		rhs := testMergeType.New()
		_ = rhs.Set("a", int32(2))
		bad := newInner(t, int32(20), nil)
		bad.values[yField.index] = int64(3)
		_ = rhs.Set("inner", bad)

		if err := lhs.Merge(rhs); !errors.Is(err, wire.ErrIncorrectValue) {
			t.Fatalf("expected ErrIncorrectValue, got %v", err)
		}
		if v, _ := Value[int32](lhs, "a"); v != 1 {
			t.Errorf("a changed to %d", v)
		}
		inner, _ := Value[*Message](lhs, "inner")
		if x, _ := Value[int32](inner, "x"); x != 10 {
			t.Errorf("inner.x changed to %d", x)
		}
		if !rhs.Has("a") || !rhs.Has("inner") {
			t.Error("rhs should not be consumed by a failed merge")
		}
	})
}
