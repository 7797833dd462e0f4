package schema

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/anirudhraja/pureproto/wire"
)

var (
	testLabelEntry = NewBuilder("Person.LabelsEntry").MapEntry().
			Add(1, "key", String).
			Add(2, "value", Int32).
			MustBuild()
	testPerson = NewBuilder("Person").
			Add(1, "user_name", String).
			Add(2, "age", Int32).
			Add(3, "scores", Double, Repeated()).
			Add(4, "color", testColor.Record()).
			Add(5, "labels", MessageRecord(testLabelEntry), Repeated()).
			Add(6, "best_friend", MessageRecord(testInner)).
			MustBuild()
)

func TestFromMap(t *testing.T) {
	m, err := FromMap(testPerson, map[string]interface{}{
		"userName":    "ada",
		"age":         json.Number("36"),
		"scores":      []float64{1.5, 2},
		"color":       "GREEN",
		"labels":      map[string]interface{}{"x": 1, "y": "2"},
		"best_friend": map[string]interface{}{"a": 7.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := Value[string](m, "user_name"); v != "ada" {
		t.Errorf("user_name: %v", m.Get("user_name"))
	}
	if v, _ := Value[int32](m, "age"); v != 36 {
		t.Errorf("age: %v", m.Get("age"))
	}
	if v, _ := Value[int32](m, "color"); v != 1 {
		t.Errorf("color: %v", m.Get("color"))
	}
	labels, _ := Value[[]interface{}](m, "labels")
	if len(labels) != 2 {
		t.Fatalf("labels: %v", labels)
	}

	data, err := m.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	back, err := testPerson.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]interface{}{
		"user_name":   "ada",
		"age":         int32(36),
		"scores":      []interface{}{1.5, 2.0},
		"color":       "GREEN",
		"labels":      map[string]interface{}{"x": int32(1), "y": int32(2)},
		"best_friend": map[string]interface{}{"a": int32(7)},
	}
	if got := back.AsMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("AsMap() = %#v\nwant %#v", got, want)
	}
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
		want error
	}{
		{"unknown field", map[string]interface{}{"nickname": "x"}, ErrUnknownField},
		{"fractional int", map[string]interface{}{"age": 1.5}, wire.ErrIncorrectValue},
		{"unknown enum name", map[string]interface{}{"color": "PURPLE"}, wire.ErrIncorrectValue},
		{"scalar for list", map[string]interface{}{"scores": 1.0}, wire.ErrIncorrectValue},
		{"nested unknown field", map[string]interface{}{"best_friend": map[string]interface{}{"b": 1}}, ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(testPerson, tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAsMap_SkipsAbsent(t *testing.T) {
	m := testPerson.New()
	_ = m.Set("age", int32(0))
	got := m.AsMap()
	if len(got) != 1 || got["age"] != int32(0) {
		t.Errorf("expected only age, got %v", got)
	}
}

func mapType(name string, key, value *Record) *Type {
	entry := NewBuilder(name + ".LabelsEntry").MapEntry().
		Add(1, "key", key).
		Add(2, "value", value).
		MustBuild()
	return NewBuilder(name).Add(1, "labels", MessageRecord(entry), Repeated()).MustBuild()
}

func TestAsMap_MapEntryDefaults(t *testing.T) {
	tests := []struct {
		name string
		typ  *Type
		data []byte
		want map[string]interface{}
	}{
		{
			name: "missing key and value, then missing key",
			typ:  mapType("StringInt", String, Int32),
			data: []byte{0x0A, 0x00, 0x0A, 0x02, 0x10, 0x05},
			want: map[string]interface{}{"": int32(5)},
		},
		{
			name: "missing scalar value",
			typ:  mapType("StringInt", String, Int32),
			data: []byte{0x0A, 0x03, 0x0A, 0x01, 'x'},
			want: map[string]interface{}{"x": int32(0)},
		},
		{
			name: "missing integer key",
			typ:  mapType("IntString", Int32, String),
			data: []byte{0x0A, 0x03, 0x12, 0x01, 'v'},
			want: map[string]interface{}{"0": "v"},
		},
		{
			name: "missing enum value",
			typ:  mapType("StringColor", String, testColor.Record()),
			data: []byte{0x0A, 0x03, 0x0A, 0x01, 'x'},
			want: map[string]interface{}{"x": "RED"},
		},
		{
			name: "missing message value",
			typ:  mapType("IntInner", Int32, MessageRecord(testInner)),
			data: []byte{0x0A, 0x00},
			want: map[string]interface{}{"0": map[string]interface{}{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.typ.Unmarshal(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			got := m.AsMap()["labels"]
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRecord_Zero(t *testing.T) {
	tests := []struct {
		rec  *Record
		want interface{}
	}{
		{Bool, false},
		{Int32, int32(0)},
		{Uint64, uint64(0)},
		{Sint64, int64(0)},
		{Fixed32, uint32(0)},
		{Float, float32(0)},
		{Double, float64(0)},
		{String, ""},
		{Bytes, []byte{}},
		{testColor.Record(), int32(0)},
	}
	for _, tt := range tests {
		if got := tt.rec.Zero(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %#v, want %#v", tt.rec.Name, got, tt.want)
		}
	}

	m, ok := MessageRecord(testInner).Zero().(*Message)
	if !ok || m.Type() != testInner || len(m.AsMap()) != 0 {
		t.Errorf("expected an empty %s, got %v", testInner.Name(), m)
	}
}
