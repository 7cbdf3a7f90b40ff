package schema

import (
	"encoding/json"
	stdErrors "errors"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/errors"
	"github.com/reglet-dev/schemagen/infrastructure/descriptor"
)

func render(t *testing.T, f *entities.Fragment) string {
	t.Helper()
	b, err := json.Marshal(f)
	require.NoError(t, err)
	return string(b)
}

func synthesize(t *testing.T, gen *Generator, d *descriptor.Descriptor) string {
	t.Helper()
	f, err := gen.Synthesize(d, nil, NewDefinitions(false, nil), false)
	require.NoError(t, err)
	return render(t, f)
}

func shapeUnion() *descriptor.Descriptor {
	return descriptor.Sealed("Shape",
		descriptor.Variant("B", descriptor.Record("B", descriptor.Field("y", descriptor.Int()))),
		descriptor.Variant("A", descriptor.Record("A", descriptor.Field("x", descriptor.Int()))),
	)
}

func TestSynthesize_RecordWithRange(t *testing.T) {
	rec := descriptor.Record("Example",
		descriptor.Field("name", descriptor.String()),
		descriptor.Field("count", descriptor.Int(), entities.IntRange{Min: 0, Max: 100}),
	)

	got := synthesize(t, NewGenerator(), rec)

	assert.Equal(t,
		`{"type":"object","properties":{"name":{"type":"string"},"count":{"type":"number","minimum":0,"maximum":100}},"required":["name","count"]}`,
		got)
}

func TestGenerate_TopLevelKeys(t *testing.T) {
	rec := descriptor.Record("Example", descriptor.Field("name", descriptor.String()))

	doc, err := NewGenerator().Generate(rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"$schema", "title", "type", "properties", "required", "definitions"}, doc.Keys())
	assert.Equal(t,
		`{"$schema":"http://json-schema.org/draft-07/schema","title":"Example","type":"object","properties":{"name":{"type":"string"}},"required":["name"],"definitions":{}}`,
		render(t, doc))
}

func TestGenerate_BuiltinRootHasNoTitle(t *testing.T) {
	doc, err := NewGenerator().Generate(descriptor.List(descriptor.String()))
	require.NoError(t, err)

	assert.Equal(t,
		`{"$schema":"http://json-schema.org/draft-07/schema","type":"array","items":{"type":"string"},"definitions":{}}`,
		render(t, doc))
}

func TestSynthesize_RequiredFields(t *testing.T) {
	rec := descriptor.Record("Fields",
		descriptor.Field("plain", descriptor.String()),
		descriptor.OptionalField("defaulted", descriptor.String()),
		descriptor.Field("nullable", descriptor.String().Nullable()),
		descriptor.OptionalField("optional", descriptor.String().Nullable()),
	)

	f, err := NewGenerator().Synthesize(rec, nil, NewDefinitions(false, nil), false)
	require.NoError(t, err)

	required, ok := f.Get(entities.KeyRequired)
	require.True(t, ok)
	assert.Equal(t, []string{"plain", "defaulted", "nullable"}, required)
}

func TestSynthesize_OptionalFieldNullableAfterResolution(t *testing.T) {
	provider, err := descriptor.NewProvider(descriptor.WithContextual("Instant", descriptor.String().Nullable()))
	require.NoError(t, err)
	nickname := descriptor.Inline("Nickname", descriptor.Field("value", descriptor.String().Nullable()))
	rec := descriptor.Record("Event",
		descriptor.OptionalField("at", descriptor.Contextual("Instant")),
		descriptor.OptionalField("nick", nickname),
		descriptor.Field("seen", descriptor.Contextual("Instant")),
	)

	got := synthesize(t, NewGenerator(WithProvider(provider)), rec)

	assert.Equal(t,
		`{"type":"object","properties":{`+
			`"at":{"oneOf":[{"type":"null"},{"type":"string"}]},`+
			`"nick":{"oneOf":[{"type":"null"},{"type":"string"}]},`+
			`"seen":{"oneOf":[{"type":"null"},{"type":"string"}]}},`+
			`"required":["seen"]}`,
		got)
}

func TestSynthesize_NullableLeaf(t *testing.T) {
	rec := descriptor.Record("Note",
		descriptor.OptionalField("text", descriptor.String().Nullable(), entities.Description{Lines: []string{"free", "text"}}),
	)

	got := synthesize(t, NewGenerator(), rec)

	assert.Equal(t,
		`{"type":"object","properties":{"text":{"oneOf":[{"type":"null"},{"type":"string"}],"description":"free\ntext"}}}`,
		got)
}

func TestSynthesize_NullableRecord(t *testing.T) {
	inner := descriptor.Record("Inner", descriptor.Field("id", descriptor.Long()))
	rec := descriptor.Record("Outer", descriptor.Field("inner", inner.Nullable()))

	got := synthesize(t, NewGenerator(), rec)

	assert.Equal(t,
		`{"type":"object","properties":{"inner":{"oneOf":[{"type":"null"},{"type":"object"}],"properties":{"id":{"type":"number"}},"required":["id"]}},"required":["inner"]}`,
		got)
}

func TestSynthesize_Leaves(t *testing.T) {
	tests := []struct {
		name string
		desc *descriptor.Descriptor
		want string
	}{
		{
			name: "boolean",
			desc: descriptor.Boolean(),
			want: `{"type":"boolean"}`,
		},
		{
			name: "float range",
			desc: descriptor.Double().Annotate(entities.FloatRange{Min: 0.5, Max: 1.5}),
			want: `{"type":"number","minimum":0.5,"maximum":1.5}`,
		},
		{
			name: "int range ignored on floats",
			desc: descriptor.Double().Annotate(entities.IntRange{Min: 1, Max: 2}),
			want: `{"type":"number"}`,
		},
		{
			name: "float range ignored on integers",
			desc: descriptor.Short().Annotate(entities.FloatRange{Min: 1, Max: 2}),
			want: `{"type":"number"}`,
		},
		{
			name: "string enum sorted",
			desc: descriptor.String().Annotate(entities.StringEnum{Values: []string{"b", "a", "b"}}),
			want: `{"type":"string","enum":["a","b"]}`,
		},
		{
			name: "pattern",
			desc: descriptor.String().Annotate(entities.Pattern{Regex: "^[0-9]+$"}),
			want: `{"type":"string","pattern":"^[0-9]+$"}`,
		},
		{
			name: "char",
			desc: descriptor.Char(),
			want: `{"type":"string"}`,
		},
		{
			name: "enum members",
			desc: descriptor.Enum("Color", "red", "blue"),
			want: `{"type":"string","enum":["blue","red"]}`,
		},
		{
			name: "map",
			desc: descriptor.Map(descriptor.String(), descriptor.Int()),
			want: `{"type":"object","additionalProperties":{"type":"number"}}`,
		},
		{
			name: "map with enum keys",
			desc: descriptor.Map(descriptor.Enum("Color", "red"), descriptor.Boolean()),
			want: `{"type":"object","additionalProperties":{"type":"boolean"}}`,
		},
		{
			name: "object singleton",
			desc: descriptor.Object("Unit"),
			want: `{"type":"object"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, synthesize(t, NewGenerator(), tt.desc))
		})
	}
}

func TestSynthesize_SiteOverridesTypeAnnotations(t *testing.T) {
	code := descriptor.String().Annotate(entities.Pattern{Regex: "^[a-z]+$"}, entities.Description{Lines: []string{"code"}})
	rec := descriptor.Record("Codes",
		descriptor.Field("inherited", code),
		descriptor.Field("overridden", code, entities.Pattern{Regex: "^[A-Z]+$"}),
	)

	got := synthesize(t, NewGenerator(), rec)

	assert.Equal(t,
		`{"type":"object","properties":{"inherited":{"type":"string","description":"code","pattern":"^[a-z]+$"},"overridden":{"type":"string","description":"code","pattern":"^[A-Z]+$"}},"required":["inherited","overridden"]}`,
		got)
}

func TestSynthesize_InlineWrapper(t *testing.T) {
	email := descriptor.Inline("Email", descriptor.Field("value", descriptor.String(), entities.Pattern{Regex: "^.+@.+$"}))

	t.Run("unwraps to the field schema", func(t *testing.T) {
		assert.Equal(t, `{"type":"string","pattern":"^.+@.+$"}`, synthesize(t, NewGenerator(), email))
	})

	t.Run("keeps wrapper nullability", func(t *testing.T) {
		assert.Equal(t,
			`{"oneOf":[{"type":"null"},{"type":"string"}],"pattern":"^.+@.+$"}`,
			synthesize(t, NewGenerator(), email.Nullable()))
	})

	t.Run("site pattern yields a distinct definition", func(t *testing.T) {
		rec := descriptor.Record("Contacts",
			descriptor.Field("primary", email),
			descriptor.Field("backup", email),
			descriptor.Field("internal", email, entities.Pattern{Regex: "^.+@corp$"}),
		)
		defs := NewDefinitions(true, nil)

		_, err := NewGenerator(WithAutoDefinitions(true)).Synthesize(rec, nil, defs, false)
		require.NoError(t, err)
		materialized, err := defs.Materialize()
		require.NoError(t, err)

		var patterns []string
		materialized.Each(func(_ string, value any) {
			if p, ok := value.(*entities.Fragment).Get(entities.KeyPattern); ok {
				patterns = append(patterns, p.(string))
			}
		})
		assert.Equal(t, 3, materialized.Len())
		assert.ElementsMatch(t, []string{"^.+@.+$", "^.+@corp$"}, patterns)
	})
}

func TestSynthesize_Contextual(t *testing.T) {
	decimal := descriptor.Contextual("Decimal")

	t.Run("unresolved", func(t *testing.T) {
		_, err := NewGenerator().Synthesize(decimal, nil, NewDefinitions(false, nil), false)

		var unresolved *errors.UnresolvedContextualTypeError
		require.True(t, stdErrors.As(err, &unresolved))
		assert.Equal(t, "Decimal", unresolved.SerialName)
		assert.True(t, errors.IsConfigurationDefect(err))
	})

	t.Run("resolved through the provider", func(t *testing.T) {
		provider, err := descriptor.NewProvider(
			descriptor.WithContextual("Decimal", descriptor.String().Annotate(entities.Pattern{Regex: "^[0-9.]+$"})),
		)
		require.NoError(t, err)
		gen := NewGenerator(WithProvider(provider))

		assert.Equal(t, `{"type":"string","pattern":"^[0-9.]+$"}`, synthesize(t, gen, decimal))
		assert.Equal(t,
			`{"oneOf":[{"type":"null"},{"type":"string"}],"pattern":"^[0-9.]+$"}`,
			synthesize(t, gen, decimal.Nullable()))
	})
}

func TestSynthesize_NonStringMapKey(t *testing.T) {
	rec := descriptor.Record("Counts", descriptor.Field("byID", descriptor.Map(descriptor.Int(), descriptor.String())))

	_, err := NewGenerator().Synthesize(rec, nil, NewDefinitions(false, nil), false)

	var mapKey *errors.NonStringMapKeyError
	require.True(t, stdErrors.As(err, &mapKey))
	assert.Equal(t, entities.KindInt, mapKey.KeyKind)

	var located *errors.SchemaError
	require.True(t, stdErrors.As(err, &located))
	assert.Equal(t, "$.byID", located.Path)
}

func TestSynthesize_TaggedUnion(t *testing.T) {
	got := synthesize(t, NewGenerator(), shapeUnion())

	assert.Equal(t,
		`{"properties":{"type":{"type":"string","enum":["A","B"]}},"anyOf":[`+
			`{"type":"object","properties":{"type":{"const":"A"},"x":{"type":"number"}},"required":["type","x"]},`+
			`{"type":"object","properties":{"type":{"const":"B"},"y":{"type":"number"}},"required":["type","y"]}`+
			`],"required":["type"]}`,
		got)
}

func TestSynthesize_TaggedUnionOptions(t *testing.T) {
	t.Run("custom discriminator", func(t *testing.T) {
		f, err := NewGenerator(WithDiscriminator("kind")).Synthesize(shapeUnion(), nil, NewDefinitions(false, nil), false)
		require.NoError(t, err)

		assert.Equal(t, []string{"kind"}, mustGet(t, f, entities.KeyRequired))
		properties, ok := f.Fragment(entities.KeyProperties)
		require.True(t, ok)
		assert.True(t, properties.Has("kind"))
	})

	t.Run("nullable union puts null first", func(t *testing.T) {
		f, err := NewGenerator().Synthesize(shapeUnion().Nullable(), nil, NewDefinitions(false, nil), false)
		require.NoError(t, err)

		anyOf := mustGet(t, f, entities.KeyAnyOf).([]*entities.Fragment)
		require.Len(t, anyOf, 3)
		assert.Equal(t, `{"type":"null"}`, render(t, anyOf[0]))
	})

	t.Run("non record variant", func(t *testing.T) {
		union := descriptor.Sealed("Value", descriptor.Variant("text", descriptor.String()))

		assert.Equal(t,
			`{"properties":{"type":{"type":"string","enum":["text"]}},"anyOf":[{"type":"string"}],"required":["type"]}`,
			synthesize(t, NewGenerator(), union))
	})

	t.Run("empty union", func(t *testing.T) {
		_, err := NewGenerator().Synthesize(descriptor.Open("Plugin"), nil, NewDefinitions(false, nil), false)

		var empty *errors.EmptyUnionError
		require.True(t, stdErrors.As(err, &empty))
		assert.Equal(t, "Plugin", empty.Union)
	})

	t.Run("open implementations from the provider", func(t *testing.T) {
		provider, err := descriptor.NewProvider(
			descriptor.WithImplementation("Plugin", descriptor.Record("http", descriptor.Field("url", descriptor.String()))),
			descriptor.WithImplementation("Plugin", descriptor.Record("dns", descriptor.Field("host", descriptor.String()))),
		)
		require.NoError(t, err)

		f, err := NewGenerator(WithProvider(provider)).Synthesize(descriptor.Open("Plugin"), nil, NewDefinitions(false, nil), false)
		require.NoError(t, err)

		properties, ok := f.Fragment(entities.KeyProperties)
		require.True(t, ok)
		disc, ok := properties.Fragment("type")
		require.True(t, ok)
		assert.Equal(t, []string{"dns", "http"}, mustGet(t, disc, entities.KeyEnum))
		assert.Len(t, mustGet(t, f, entities.KeyAnyOf), 2)
	})
}

func TestGenerate_ExposeDiscriminator(t *testing.T) {
	rec := descriptor.Record("Circle", descriptor.Field("radius", descriptor.Double()))

	doc, err := NewGenerator(WithExposeDiscriminator(true)).Generate(rec)
	require.NoError(t, err)

	assert.Equal(t,
		`{"$schema":"http://json-schema.org/draft-07/schema","title":"Circle","type":"object","properties":{"type":{"const":"Circle"},"radius":{"type":"number"}},"required":["type","radius"],"definitions":{}}`,
		render(t, doc))
}

func TestGenerate_ClosedObjects(t *testing.T) {
	rec := descriptor.Record("Point", descriptor.Field("x", descriptor.Int()))

	got := synthesize(t, NewGenerator(WithClosedObjects(true)), rec)

	assert.Equal(t,
		`{"type":"object","properties":{"x":{"type":"number"}},"required":["x"],"additionalProperties":false}`,
		got)
}

func TestGenerate_SelfReferentialType(t *testing.T) {
	node := descriptor.Record("node")
	node.AddField(descriptor.Field("value", descriptor.String()))
	node.AddField(descriptor.Field("children", descriptor.List(node)))

	doc, err := NewGenerator().Generate(node)
	require.NoError(t, err)

	definitions, ok := doc.Fragment(entities.KeyDefinitions)
	require.True(t, ok)
	require.Equal(t, 1, definitions.Len())
	id := definitions.Keys()[0]
	assert.True(t, strings.HasPrefix(id, "node-"))

	def, _ := definitions.Fragment(id)
	assert.Equal(t, DefinitionsPointer+id, mustGet(t, path(t, def, entities.KeyProperties, "children", entities.KeyItems), entities.KeyRef))
	assert.Equal(t, DefinitionsPointer+id, mustGet(t, path(t, doc, entities.KeyProperties, "children", entities.KeyItems), entities.KeyRef))
}

func TestGenerate_SelfReferentialTypeWithAutoDefinitions(t *testing.T) {
	node := descriptor.Record("node")
	node.AddField(descriptor.Field("children", descriptor.List(node)))

	doc, err := NewGenerator(WithAutoDefinitions(true)).Generate(node)
	require.NoError(t, err)

	root := mustGet(t, doc, entities.KeyRef).(string)
	definitions, _ := doc.Fragment(entities.KeyDefinitions)
	require.Equal(t, 2, definitions.Len())

	def, ok := definitions.Fragment(strings.TrimPrefix(root, DefinitionsPointer))
	require.True(t, ok)
	list := mustGet(t, path(t, def, entities.KeyProperties, "children"), entities.KeyRef).(string)
	listDef, ok := definitions.Fragment(strings.TrimPrefix(list, DefinitionsPointer))
	require.True(t, ok)
	assert.Equal(t, root, mustGet(t, path(t, listDef, entities.KeyItems), entities.KeyRef))
}

func TestGenerate_ExplicitDefinitions(t *testing.T) {
	money := descriptor.Record("Money", descriptor.Field("cents", descriptor.Long()))
	rec := descriptor.Record("Invoice",
		descriptor.Field("total", money, entities.Definition{ID: "Money"}, entities.Description{Lines: []string{"grand total"}}),
		descriptor.Field("tax", money, entities.Definition{ID: "Money"}, entities.Description{Lines: []string{"grand total"}}),
	)

	doc, err := NewGenerator().Generate(rec)
	require.NoError(t, err)

	total := path(t, doc, entities.KeyProperties, "total")
	assert.Equal(t, `{"$ref":"#/definitions/Money","additionalProperties":false,"description":"grand total"}`, render(t, total))

	definitions, _ := doc.Fragment(entities.KeyDefinitions)
	assert.Equal(t, []string{"Money"}, definitions.Keys())
}

func TestGenerate_ExplicitDefinitionSharedAcrossDescriptions(t *testing.T) {
	address := descriptor.Record("Address", descriptor.Field("street", descriptor.String())).
		Annotate(entities.Definition{ID: "address"}, entities.Description{Lines: []string{"postal address"}})
	rec := descriptor.Record("Order",
		descriptor.Field("billing", address, entities.Description{Lines: []string{"billed to"}}),
		descriptor.Field("shipping", address, entities.Description{Lines: []string{"shipped to"}}),
	)

	doc, err := NewGenerator().Generate(rec)
	require.NoError(t, err)

	assert.Equal(t, `{"$ref":"#/definitions/address","additionalProperties":false,"description":"billed to"}`,
		render(t, path(t, doc, entities.KeyProperties, "billing")))
	assert.Equal(t, `{"$ref":"#/definitions/address","additionalProperties":false,"description":"shipped to"}`,
		render(t, path(t, doc, entities.KeyProperties, "shipping")))
	assert.Equal(t,
		`{"address":{"type":"object","description":"postal address","properties":{"street":{"type":"string"}},"required":["street"]}}`,
		render(t, path(t, doc, entities.KeyDefinitions)))
}

func TestGenerate_DefinitionCollision(t *testing.T) {
	rec := descriptor.Record("Pair",
		descriptor.Field("left", descriptor.Record("Left"), entities.Definition{ID: "Same"}),
		descriptor.Field("right", descriptor.Record("Right"), entities.Definition{ID: "Same"}),
	)

	doc, err := NewGenerator().Generate(rec)

	assert.Nil(t, doc)
	var collision *errors.DefinitionCollisionError
	require.True(t, stdErrors.As(err, &collision))
	assert.Equal(t, "Same", collision.ID)
}

func TestGenerate_NoDefinitionWithAutoDefinitions(t *testing.T) {
	rec := descriptor.Record("Box", descriptor.Field("label", descriptor.String(), entities.NoDefinition{}))
	defs := NewDefinitions(true, nil)

	f, err := NewGenerator(WithAutoDefinitions(true)).Synthesize(rec, nil, defs, false)
	require.NoError(t, err)
	assert.True(t, f.Has(entities.KeyRef))

	materialized, err := defs.Materialize()
	require.NoError(t, err)
	require.Equal(t, 1, materialized.Len())
	box, _ := materialized.Fragment(materialized.Keys()[0])
	assert.Equal(t, `{"type":"string"}`, render(t, path(t, box, entities.KeyProperties, "label")))
}

func TestGenerate_MaxDepth(t *testing.T) {
	leaf := descriptor.Record("D", descriptor.Field("v", descriptor.String()))
	c := descriptor.Record("C", descriptor.Field("d", leaf))
	b := descriptor.Record("B", descriptor.Field("c", c))
	a := descriptor.Record("A", descriptor.Field("b", b))

	_, err := NewGenerator(WithMaxDepth(2)).Generate(a)

	var depth *errors.MaxDepthError
	require.True(t, stdErrors.As(err, &depth))
	assert.Equal(t, 2, depth.Limit)

	_, err = NewGenerator(WithMaxDepth(4)).Generate(a)
	assert.NoError(t, err)
}

func TestGenerate_Deterministic(t *testing.T) {
	node := descriptor.Record("node")
	node.AddField(descriptor.Field("children", descriptor.List(node)))
	rec := descriptor.Record("Root",
		descriptor.Field("shape", shapeUnion()),
		descriptor.Field("tree", node),
		descriptor.Field("tags", descriptor.Map(descriptor.String(), descriptor.Enum("Tag", "z", "a"))),
	)
	gen := NewGenerator(WithAutoDefinitions(true))

	first, err := gen.Generate(rec)
	require.NoError(t, err)
	second, err := gen.Generate(rec)
	require.NoError(t, err)

	assert.Equal(t, render(t, first), render(t, second))
}

func TestGenerate_DocumentValidatesInstances(t *testing.T) {
	rec := descriptor.Record("Drawing",
		descriptor.Field("name", descriptor.String(), entities.Pattern{Regex: "^[a-z]+$"}),
		descriptor.Field("shape", shapeUnion()),
		descriptor.OptionalField("note", descriptor.String().Nullable()),
	)

	for _, auto := range []bool{false, true} {
		doc, err := NewGenerator(WithAutoDefinitions(auto)).Generate(rec)
		require.NoError(t, err)

		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		require.NoError(t, compiler.AddResource("drawing.json", strings.NewReader(render(t, doc))))
		compiled, err := compiler.Compile("drawing.json")
		require.NoError(t, err)

		valid := []string{
			`{"name":"sketch","shape":{"type":"A","x":1}}`,
			`{"name":"sketch","shape":{"type":"B","y":2},"note":null}`,
		}
		invalid := []string{
			`{"name":"Sketch","shape":{"type":"A","x":1}}`,
			`{"name":"sketch","shape":{"type":"C"}}`,
			`{"name":"sketch","shape":{"type":"A"}}`,
			`{"shape":{"type":"A","x":1}}`,
		}
		for _, instance := range valid {
			assert.NoError(t, compiled.Validate(decode(t, instance)), instance)
		}
		for _, instance := range invalid {
			assert.Error(t, compiled.Validate(decode(t, instance)), instance)
		}
	}
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func mustGet(t *testing.T, f *entities.Fragment, key string) any {
	t.Helper()
	v, ok := f.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func path(t *testing.T, f *entities.Fragment, keys ...string) *entities.Fragment {
	t.Helper()
	current := f
	for _, key := range keys {
		next, ok := current.Fragment(key)
		require.True(t, ok, "missing fragment %q", key)
		current = next
	}
	return current
}
