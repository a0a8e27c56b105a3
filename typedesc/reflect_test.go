package typedesc

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProject struct {
	ID        string          `json:"id"`
	Tags      []string        `json:"tags"`
	Slug      *string         `json:"slug"`
	Team      string          `json:"team,omitempty"`
	Internal  string          `json:"-"`
	Untagged  int             `json:""`
	CreatedAt time.Time       `json:"dateCreated"`
	Owner     uuid.UUID       `json:"owner"`
	Extra     json.RawMessage `json:"extra"`
	hidden    string
}

type testBase struct {
	ID string `json:"id"`
}

type testOptionalBase struct {
	Version int `json:"version"`
}

type testEmbedded struct {
	testBase
	*testOptionalBase
	Name string `json:"name"`
}

type testTaggedEmbed struct {
	testBase `json:"base"`
}

type testSelfEmbed struct {
	*testSelfEmbed
	ID string `json:"id"`
}

type testMutualA struct {
	*testMutualB
	X string `json:"x"`
}

type testMutualB struct {
	*testMutualA
	Y string `json:"y"`
}

type testShadowInner struct {
	ID    int    `json:"id"`
	Extra string `json:"extra"`
}

type testShadowOuter struct {
	ID string `json:"id"`
	testShadowInner
}

type testShadowLeft struct {
	Name string `json:"name"`
}

type testShadowRight struct {
	Name string `json:"name"`
}

type testShadowAmbiguous struct {
	testShadowLeft
	testShadowRight
	Kind string `json:"kind"`
}

type testUntaggedName struct {
	Name int
}

type testTaggedName struct {
	Title string `json:"Name"`
}

type testShadowTagged struct {
	testUntaggedName
	testTaggedName
}

type testStringEncoded struct {
	ID      int64    `json:"id,string"`
	Enabled *bool    `json:"enabled,string,omitempty"`
	Ratio   float64  `json:"ratio,string"`
	Name    string   `json:"name,string"`
	Tags    []string `json:"tags,string"`
}

type testNode struct {
	Name     string     `json:"name"`
	Children []testNode `json:"children"`
}

type testPage[T any] struct {
	Items []T `json:"items"`
}

type testSerializer struct{}

func (testSerializer) Serialize(p *testProject) testProject { return *p }

type testPtrSerializer struct{}

func (*testPtrSerializer) Serialize() ([]testBase, error) { return nil, nil }

type testErrSerializer struct{}

func (testErrSerializer) Serialize() error { return nil }

func TestFromTypePrimitives(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Descriptor
	}{
		{"bool", true, Primitive{Name: PrimitiveBoolean}},
		{"int", 0, Primitive{Name: PrimitiveInteger}},
		{"int64", int64(0), Primitive{Name: PrimitiveInteger}},
		{"uint16", uint16(0), Primitive{Name: PrimitiveInteger}},
		{"float32", float32(0), Primitive{Name: PrimitiveNumber}},
		{"float64", 0.0, Primitive{Name: PrimitiveNumber}},
		{"string", "", Primitive{Name: PrimitiveString}},
		{"pointer", new(string), Primitive{Name: PrimitiveString}},
		{"time", time.Time{}, Primitive{Name: PrimitiveDateTime}},
		{"uuid", uuid.UUID{}, Primitive{Name: PrimitiveUUID}},
		{"bytes", []byte{}, Primitive{Name: PrimitiveBytes}},
		{"raw message", json.RawMessage{}, Primitive{Name: PrimitiveAny}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromValue(tt.value))
		})
	}
}

func TestFromTypeArrays(t *testing.T) {
	t.Run("slice", func(t *testing.T) {
		assert.Equal(t, ArrayOf{Elem: Primitive{Name: PrimitiveString}}, FromValue([]string{}))
	})

	t.Run("array", func(t *testing.T) {
		assert.Equal(t, ArrayOf{Elem: Primitive{Name: PrimitiveInteger}}, FromValue([3]int{}))
	})

	t.Run("nested", func(t *testing.T) {
		want := ArrayOf{Elem: ArrayOf{Elem: Primitive{Name: PrimitiveString}}}
		assert.Equal(t, want, FromValue([][]string{}))
	})
}

func TestFromTypeUnknown(t *testing.T) {
	t.Run("map", func(t *testing.T) {
		assert.IsType(t, Unknown{}, FromValue(map[string]int{}))
	})

	t.Run("chan", func(t *testing.T) {
		assert.Equal(t, Unknown{Reason: "chan"}, FromValue(make(chan int)))
	})

	t.Run("func", func(t *testing.T) {
		assert.Equal(t, Unknown{Reason: "func"}, FromValue(func() {}))
	})

	t.Run("empty interface", func(t *testing.T) {
		assert.Equal(t, Primitive{Name: PrimitiveAny}, FromType(reflect.TypeFor[any]()))
	})

	t.Run("non-empty interface", func(t *testing.T) {
		assert.IsType(t, Unknown{}, FromType(reflect.TypeFor[error]()))
	})

	t.Run("nil", func(t *testing.T) {
		assert.IsType(t, Unknown{}, FromValue(nil))
		assert.IsType(t, Unknown{}, FromType(nil))
	})
}

func TestFromTypeStruct(t *testing.T) {
	d := FromValue(testProject{})
	rec, ok := d.(Record)
	require.True(t, ok)

	assert.Equal(t, "testProject", rec.Name)
	assert.Equal(t, "github.com/vitalvas/schemadoc/typedesc", rec.PkgPath)
	assert.Equal(t, []string{"id", "tags", "slug", "team", "Untagged", "dateCreated", "owner", "extra"}, rec.FieldNames())

	t.Run("field types", func(t *testing.T) {
		tags, ok := rec.Field("tags")
		require.True(t, ok)
		assert.Equal(t, ArrayOf{Elem: Primitive{Name: PrimitiveString}}, tags.Type)

		created, ok := rec.Field("dateCreated")
		require.True(t, ok)
		assert.Equal(t, Primitive{Name: PrimitiveDateTime}, created.Type)
	})

	t.Run("optional fields", func(t *testing.T) {
		id, _ := rec.Field("id")
		assert.False(t, id.Optional)

		slug, _ := rec.Field("slug")
		assert.True(t, slug.Optional)

		team, _ := rec.Field("team")
		assert.True(t, team.Optional)
	})

	t.Run("skipped fields", func(t *testing.T) {
		_, ok := rec.Field("Internal")
		assert.False(t, ok)

		_, ok = rec.Field("hidden")
		assert.False(t, ok)
	})
}

func TestFromTypeEmbedded(t *testing.T) {
	t.Run("inlined", func(t *testing.T) {
		rec, ok := FromValue(testEmbedded{}).(Record)
		require.True(t, ok)
		assert.Equal(t, []string{"id", "version", "name"}, rec.FieldNames())

		id, _ := rec.Field("id")
		assert.False(t, id.Optional)

		version, _ := rec.Field("version")
		assert.True(t, version.Optional, "pointer-embedded fields are optional")
	})

	t.Run("tagged embed is a named field", func(t *testing.T) {
		rec, ok := FromValue(testTaggedEmbed{}).(Record)
		require.True(t, ok)
		assert.Equal(t, []string{"base"}, rec.FieldNames())
	})
}

func TestFromTypeEmbeddedRecursive(t *testing.T) {
	t.Run("self embedding", func(t *testing.T) {
		rec, ok := FromValue(testSelfEmbed{}).(Record)
		require.True(t, ok)
		assert.Equal(t, []string{"id"}, rec.FieldNames())
	})

	t.Run("mutual embedding", func(t *testing.T) {
		rec, ok := FromValue(testMutualA{}).(Record)
		require.True(t, ok)
		assert.Equal(t, []string{"y", "x"}, rec.FieldNames())

		y, _ := rec.Field("y")
		assert.True(t, y.Optional)

		rec, ok = FromValue(&testMutualB{}).(Record)
		require.True(t, ok)
		assert.Equal(t, []string{"x", "y"}, rec.FieldNames())
	})
}

func TestFromTypeShadowedFields(t *testing.T) {
	t.Run("shallower field wins", func(t *testing.T) {
		rec, ok := FromValue(testShadowOuter{}).(Record)
		require.True(t, ok)
		assert.Equal(t, []string{"id", "extra"}, rec.FieldNames())

		id, _ := rec.Field("id")
		assert.Equal(t, Primitive{Name: PrimitiveString}, id.Type)
	})

	t.Run("ambiguous name is dropped", func(t *testing.T) {
		rec, ok := FromValue(testShadowAmbiguous{}).(Record)
		require.True(t, ok)
		assert.Equal(t, []string{"kind"}, rec.FieldNames())
	})

	t.Run("tagged field wins at equal depth", func(t *testing.T) {
		rec, ok := FromValue(testShadowTagged{}).(Record)
		require.True(t, ok)
		assert.Equal(t, []string{"Name"}, rec.FieldNames())

		name, _ := rec.Field("Name")
		assert.Equal(t, Primitive{Name: PrimitiveString}, name.Type)
	})
}

func TestFromTypeStringOption(t *testing.T) {
	rec, ok := FromValue(testStringEncoded{}).(Record)
	require.True(t, ok)

	str := Primitive{Name: PrimitiveString}
	for _, name := range []string{"id", "enabled", "ratio", "name"} {
		f, ok := rec.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, str, f.Type, name)
	}

	enabled, _ := rec.Field("enabled")
	assert.True(t, enabled.Optional)

	tags, _ := rec.Field("tags")
	assert.Equal(t, ArrayOf{Elem: str}, tags.Type)
}

func TestFromTypeRecursive(t *testing.T) {
	rec, ok := FromValue(testNode{}).(Record)
	require.True(t, ok)

	children, ok := rec.Field("children")
	require.True(t, ok)

	arr, ok := children.Type.(ArrayOf)
	require.True(t, ok)
	assert.IsType(t, Unknown{}, arr.Elem)
	assert.Contains(t, arr.Elem.String(), "recursive")
}

func TestFromTypeSiblingStructsAreNotRecursive(t *testing.T) {
	type pair struct {
		Left  testBase `json:"left"`
		Right testBase `json:"right"`
	}

	rec, ok := FromValue(pair{}).(Record)
	require.True(t, ok)

	for _, name := range []string{"left", "right"} {
		f, ok := rec.Field(name)
		require.True(t, ok)
		assert.IsType(t, Record{}, f.Type, name)
	}
}

func TestFromTypeGenericName(t *testing.T) {
	rec, ok := FromValue(testPage[testBase]{}).(Record)
	require.True(t, ok)
	assert.Equal(t, "testPagetestBase", rec.Name)

	rec, ok = FromValue(testPage[[]testBase]{}).(Record)
	require.True(t, ok)
	assert.Equal(t, "testPagetestBaseList", rec.Name)
}

func TestFromFunc(t *testing.T) {
	t.Run("first result", func(t *testing.T) {
		d, err := FromFunc(func() ([]string, error) { return nil, nil })
		require.NoError(t, err)
		assert.Equal(t, ArrayOf{Elem: Primitive{Name: PrimitiveString}}, d)
	})

	t.Run("no result", func(t *testing.T) {
		_, err := FromFunc(func() {})
		assert.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("error only", func(t *testing.T) {
		_, err := FromFunc(func() error { return nil })
		assert.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("not a func", func(t *testing.T) {
		_, err := FromFunc(42)
		assert.ErrorIs(t, err, ErrNotFunc)

		_, err = FromFunc(nil)
		assert.ErrorIs(t, err, ErrNotFunc)
	})
}

func TestFromMethod(t *testing.T) {
	t.Run("value receiver", func(t *testing.T) {
		d, err := FromMethod(testSerializer{}, "Serialize")
		require.NoError(t, err)
		rec, ok := d.(Record)
		require.True(t, ok)
		assert.Equal(t, "testProject", rec.Name)
	})

	t.Run("pointer receiver via value", func(t *testing.T) {
		d, err := FromMethod(testPtrSerializer{}, "Serialize")
		require.NoError(t, err)
		arr, ok := d.(ArrayOf)
		require.True(t, ok)
		assert.Equal(t, "testBase", arr.Elem.String())
	})

	t.Run("pointer receiver via pointer", func(t *testing.T) {
		_, err := FromMethod(&testPtrSerializer{}, "Serialize")
		require.NoError(t, err)
	})

	t.Run("missing method", func(t *testing.T) {
		_, err := FromMethod(testBase{}, "Serialize")
		assert.ErrorIs(t, err, ErrMethodNotFound)
	})

	t.Run("no value result", func(t *testing.T) {
		_, err := FromMethod(testErrSerializer{}, "Serialize")
		assert.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("nil target", func(t *testing.T) {
		_, err := FromMethod(nil, "Serialize")
		assert.ErrorIs(t, err, ErrNilTarget)
	})
}

func TestDescriptorString(t *testing.T) {
	rec := Record{Fields: []Field{
		{Name: "id", Type: Primitive{Name: "string"}},
		{Name: "tags", Type: ArrayOf{Elem: Primitive{Name: "string"}}, Optional: true},
	}}
	assert.Equal(t, "{id: string, tags?: []string}", rec.String())
	assert.Equal(t, "Project", Record{Name: "Project"}.String())
	assert.Equal(t, "unknown", Unknown{}.String())
	assert.Equal(t, "unknown(map)", Unknown{Reason: "map"}.String())
}
