package pureproto

import (
	"context"
	"reflect"
	"testing"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

type fixtures struct {
	codec      *Codec
	descriptor protoreflect.MessageDescriptor
	payload    []byte
	expected   map[string]interface{}
}

func loadFixtures(tb testing.TB) *fixtures {
	tb.Helper()

	c := New()
	if err := c.LoadSchema("testdata/user.proto"); err != nil {
		tb.Fatalf("Failed to load schema: %v", err)
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: []string{"testdata"},
		}),
	}
	files, err := compiler.Compile(context.Background(), "user.proto")
	if err != nil {
		tb.Fatalf("Failed to compile proto files: %v", err)
	}
	md := files[0].Messages().ByName("User")

	payload, err := proto.Marshal(newComplexUser(md))
	if err != nil {
		tb.Fatalf("Failed to create payload: %v", err)
	}

	return &fixtures{
		codec:      c,
		descriptor: md,
		payload:    payload,
		expected: map[string]interface{}{
			"id":       int32(123),
			"name":     "John Doe",
			"email":    "john@example.com",
			"active":   true,
			"status":   "USER_ACTIVE",
			"tags":     []interface{}{"go", "proto"},
			"metadata": map[string]interface{}{"team": "core"},
			"posts": []interface{}{
				map[string]interface{}{
					"id":      int64(1),
					"title":   "Hello",
					"tags":    []interface{}{"intro"},
					"created": uint64(1700000000),
				},
			},
			"nickname": "johnny",
			"scores":   []interface{}{int64(10), int64(-20)},
			"rating":   4.5,
			"delta":    int32(-3),
			"avatar":   []byte{0xCA, 0xFE},
		},
	}
}

func newComplexUser(md protoreflect.MessageDescriptor) *dynamicpb.Message {
	fields := md.Fields()
	user := dynamicpb.NewMessage(md)
	user.Set(fields.ByName("id"), protoreflect.ValueOfInt32(123))
	user.Set(fields.ByName("name"), protoreflect.ValueOfString("John Doe"))
	user.Set(fields.ByName("email"), protoreflect.ValueOfString("john@example.com"))
	user.Set(fields.ByName("active"), protoreflect.ValueOfBool(true))
	user.Set(fields.ByName("status"), protoreflect.ValueOfEnum(1))

	tags := user.Mutable(fields.ByName("tags")).List()
	tags.Append(protoreflect.ValueOfString("go"))
	tags.Append(protoreflect.ValueOfString("proto"))

	metadata := user.Mutable(fields.ByName("metadata")).Map()
	metadata.Set(protoreflect.ValueOfString("team").MapKey(), protoreflect.ValueOfString("core"))

	posts := user.Mutable(fields.ByName("posts")).List()
	post := posts.NewElement().Message()
	postFields := post.Descriptor().Fields()
	post.Set(postFields.ByName("id"), protoreflect.ValueOfInt64(1))
	post.Set(postFields.ByName("title"), protoreflect.ValueOfString("Hello"))
	post.Mutable(postFields.ByName("tags")).List().Append(protoreflect.ValueOfString("intro"))
	post.Set(postFields.ByName("created"), protoreflect.ValueOfUint64(1700000000))
	posts.Append(protoreflect.ValueOfMessage(post))

	nickname := user.Mutable(fields.ByName("nickname")).Message()
	nickname.Set(nickname.Descriptor().Fields().ByName("value"), protoreflect.ValueOfString("johnny"))

	scores := user.Mutable(fields.ByName("scores")).List()
	scores.Append(protoreflect.ValueOfInt64(10))
	scores.Append(protoreflect.ValueOfInt64(-20))

	user.Set(fields.ByName("rating"), protoreflect.ValueOfFloat64(4.5))
	user.Set(fields.ByName("delta"), protoreflect.ValueOfInt32(-3))
	user.Set(fields.ByName("avatar"), protoreflect.ValueOfBytes([]byte{0xCA, 0xFE}))
	return user
}

func TestDynamicPBCompatibility(t *testing.T) {
	f := loadFixtures(t)

	t.Run("parse_dynamicpb_payload", func(t *testing.T) {
		result, err := f.codec.Parse(f.payload, "benchmark.User")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if !reflect.DeepEqual(result, f.expected) {
			t.Errorf("Expected %v, got %v", f.expected, result)
		}
	})

	t.Run("dynamicpb_reads_marshaled_map", func(t *testing.T) {
		data, err := f.codec.MarshalMap(f.expected, "benchmark.User")
		if err != nil {
			t.Fatalf("MarshalMap failed: %v", err)
		}
		got := dynamicpb.NewMessage(f.descriptor)
		if err := proto.Unmarshal(data, got); err != nil {
			t.Fatalf("proto.Unmarshal failed: %v", err)
		}
		if want := newComplexUser(f.descriptor); !proto.Equal(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})
}

func BenchmarkParse_Pureproto(b *testing.B) {
	f := loadFixtures(b)
	b.ReportMetric(float64(len(f.payload)), "payload_bytes")
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := f.codec.Parse(f.payload, "benchmark.User"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshal_Pureproto(b *testing.B) {
	f := loadFixtures(b)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := f.codec.Unmarshal(f.payload, "benchmark.User"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshal_DynamicPB(b *testing.B) {
	f := loadFixtures(b)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		message := dynamicpb.NewMessage(f.descriptor)
		if err := proto.Unmarshal(f.payload, message); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshal_Pureproto(b *testing.B) {
	f := loadFixtures(b)
	m, err := f.codec.Unmarshal(f.payload, "benchmark.User")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := f.codec.Marshal(m); err != nil {
			b.Fatal(err)
		}
	}
}
