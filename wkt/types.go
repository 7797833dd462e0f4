// Package wkt defines the protobuf well-known types as ordinary schema types
// and converts them to and from their Go counterparts.
package wkt

import (
	"github.com/anirudhraja/pureproto/schema"
)

const (
	TimestampName   = "google.protobuf.Timestamp"
	DurationName    = "google.protobuf.Duration"
	AnyName         = "google.protobuf.Any"
	EmptyName       = "google.protobuf.Empty"
	FieldMaskName   = "google.protobuf.FieldMask"
	StructName      = "google.protobuf.Struct"
	ValueName       = "google.protobuf.Value"
	ListValueName   = "google.protobuf.ListValue"
	NullValueName   = "google.protobuf.NullValue"
	DoubleValueName = "google.protobuf.DoubleValue"
	FloatValueName  = "google.protobuf.FloatValue"
	Int64ValueName  = "google.protobuf.Int64Value"
	UInt64ValueName = "google.protobuf.UInt64Value"
	Int32ValueName  = "google.protobuf.Int32Value"
	UInt32ValueName = "google.protobuf.UInt32Value"
	BoolValueName   = "google.protobuf.BoolValue"
	StringValueName = "google.protobuf.StringValue"
	BytesValueName  = "google.protobuf.BytesValue"
)

var (
	Timestamp = schema.NewBuilder(TimestampName).
			Add(1, "seconds", schema.Int64).
			Add(2, "nanos", schema.Int32).
			MustBuild()

	Duration = schema.NewBuilder(DurationName).
			Add(1, "seconds", schema.Int64).
			Add(2, "nanos", schema.Int32).
			MustBuild()

	Any = schema.NewBuilder(AnyName).
		Add(1, "type_url", schema.String).
		Add(2, "value", schema.Bytes).
		MustBuild()

	Empty = schema.NewBuilder(EmptyName).MustBuild()

	FieldMask = schema.NewBuilder(FieldMaskName).
			Add(1, "paths", schema.String, schema.Repeated()).
			MustBuild()

	NullValue = schema.MustEnum(NullValueName, schema.EnumValue{Name: "NULL_VALUE", Number: 0})

	DoubleValue = wrapper(DoubleValueName, schema.Double)
	FloatValue  = wrapper(FloatValueName, schema.Float)
	Int64Value  = wrapper(Int64ValueName, schema.Int64)
	UInt64Value = wrapper(UInt64ValueName, schema.Uint64)
	Int32Value  = wrapper(Int32ValueName, schema.Int32)
	UInt32Value = wrapper(UInt32ValueName, schema.Uint32)
	BoolValue   = wrapper(BoolValueName, schema.Bool)
	StringValue = wrapper(StringValueName, schema.String)
	BytesValue  = wrapper(BytesValueName, schema.Bytes)
)

// Struct, Value and ListValue refer to each other.
var Struct, Value, ListValue, structFieldsEntry = buildStruct()

func buildStruct() (structType, value, list, entry *schema.Type) {
	sb := schema.NewBuilder(StructName)
	vb := schema.NewBuilder(ValueName)
	lb := schema.NewBuilder(ListValueName)
	eb := schema.NewBuilder(StructName + ".FieldsEntry").MapEntry()

	eb.Add(1, "key", schema.String).
		Add(2, "value", schema.MessageRecord(vb.Type()))
	sb.Add(1, "fields", schema.MessageRecord(eb.Type()), schema.Repeated())
	vb.Add(1, "null_value", NullValue.Record(), schema.InOneOf("kind")).
		Add(2, "number_value", schema.Double, schema.InOneOf("kind")).
		Add(3, "string_value", schema.String, schema.InOneOf("kind")).
		Add(4, "bool_value", schema.Bool, schema.InOneOf("kind")).
		Add(5, "struct_value", schema.MessageRecord(sb.Type()), schema.InOneOf("kind")).
		Add(6, "list_value", schema.MessageRecord(lb.Type()), schema.InOneOf("kind"))
	lb.Add(1, "values", schema.MessageRecord(vb.Type()), schema.Repeated())

	return sb.MustBuild(), vb.MustBuild(), lb.MustBuild(), eb.MustBuild()
}

func wrapper(name string, rec *schema.Record) *schema.Type {
	return schema.NewBuilder(name).Add(1, "value", rec).MustBuild()
}

// Types returns every well-known message type, including the synthesized
// map entry of Struct.
func Types() []*schema.Type {
	return []*schema.Type{
		Timestamp, Duration, Any, Empty, FieldMask,
		Struct, structFieldsEntry, Value, ListValue,
		DoubleValue, FloatValue, Int64Value, UInt64Value, Int32Value,
		UInt32Value, BoolValue, StringValue, BytesValue,
	}
}

// Enums returns the well-known enums.
func Enums() []*schema.Enum {
	return []*schema.Enum{NullValue}
}
