package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/ports"
)

func TestPrimitives(t *testing.T) {
	assert.Equal(t, "builtin.string", String().SerialName())
	assert.Equal(t, entities.KindLong, Long().Kind())
	assert.False(t, Int().IsNullable())
	assert.Equal(t, 0, Boolean().ElementCount())
}

func TestRecord(t *testing.T) {
	rec := Record("User",
		Field("name", String(), entities.Description{Lines: []string{"full name"}}),
		OptionalField("age", Int().Nullable()),
	)

	assert.Equal(t, entities.KindClass, rec.Kind())
	assert.Equal(t, []string{"name", "age"}, ports.ElementNames(rec))
	assert.Equal(t, 1, ports.ElementIndex(rec, "age"))
	assert.Equal(t, -1, ports.ElementIndex(rec, "email"))
	assert.False(t, rec.IsElementOptional(0))
	assert.True(t, rec.IsElementOptional(1))
	assert.True(t, rec.ElementDescriptor(1).IsNullable())
	assert.Len(t, rec.ElementAnnotations(0), 1)
}

func TestNullableSharesShape(t *testing.T) {
	node := Record("node")
	nullable := node.Nullable()

	node.AddField(Field("value", String())).Annotate(entities.Definition{ID: "Node"})

	assert.True(t, nullable.IsNullable())
	assert.False(t, node.IsNullable())
	assert.Equal(t, 1, nullable.ElementCount())
	assert.Len(t, nullable.Annotations(), 1)
}

func TestContainers(t *testing.T) {
	list := List(String())
	assert.Equal(t, "builtin.List<builtin.string>", list.SerialName())
	assert.Equal(t, 1, list.ElementCount())

	m := Map(String(), Double(), entities.FloatRange{Min: 0, Max: 1})
	assert.Equal(t, "builtin.Map<builtin.string,builtin.double>", m.SerialName())
	assert.Equal(t, entities.KindString, m.ElementDescriptor(0).Kind())
	assert.Len(t, m.ElementAnnotations(1), 1)
}

func TestEnumAndUnions(t *testing.T) {
	color := Enum("Color", "red", "green")
	assert.Equal(t, []string{"red", "green"}, ports.ElementNames(color))
	assert.Equal(t, entities.KindObject, color.ElementDescriptor(0).Kind())

	shape := Sealed("Shape", Variant("circle", Record("Circle")))
	assert.Equal(t, entities.KindSealed, shape.Kind())
	assert.Equal(t, "circle", shape.ElementName(0))

	assert.Equal(t, entities.KindOpen, Open("Plugin").Kind())
	assert.Equal(t, entities.KindContextual, Contextual("Decimal").Kind())

	email := Inline("Email", Field("value", String()))
	assert.True(t, email.IsInline())
	assert.Equal(t, entities.KindClass, email.Kind())
}

func TestNewProvider(t *testing.T) {
	circle := Record("circle")
	square := Record("square")

	provider, err := NewProvider(
		WithContextual("Decimal", String()),
		WithImplementation("Shape", square),
		WithImplementation("Shape", circle),
		WithRoot("shape", Open("Shape")),
		WithRoot("decimal", Contextual("Decimal")),
	)
	require.NoError(t, err)

	concrete, ok := provider.Contextual("Decimal")
	require.True(t, ok)
	assert.Equal(t, entities.KindString, concrete.Kind())

	_, ok = provider.Contextual("Money")
	assert.False(t, ok)

	impls := provider.Implementations("Shape")
	require.Len(t, impls, 2)
	assert.Equal(t, "square", impls[0].SerialName())
	assert.Empty(t, provider.Implementations("Other"))

	assert.Equal(t, []string{"decimal", "shape"}, provider.List())
	root, ok := provider.Lookup("shape")
	require.True(t, ok)
	assert.Equal(t, entities.KindOpen, root.Kind())
}

func TestNewProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ProviderOption
		wantErr string
	}{
		{
			name:    "duplicate contextual",
			opts:    []ProviderOption{WithContextual("Decimal", String()), WithContextual("Decimal", Double())},
			wantErr: `duplicate contextual type: "Decimal"`,
		},
		{
			name:    "empty contextual name",
			opts:    []ProviderOption{WithContextual("", String())},
			wantErr: "contextual serial name cannot be empty",
		},
		{
			name:    "missing concrete",
			opts:    []ProviderOption{WithContextual("Decimal", nil)},
			wantErr: `contextual type "Decimal" needs a concrete descriptor`,
		},
		{
			name:    "duplicate implementation",
			opts:    []ProviderOption{WithImplementation("Shape", Record("c")), WithImplementation("Shape", Record("c"))},
			wantErr: `duplicate implementation "c" of "Shape"`,
		},
		{
			name:    "duplicate root",
			opts:    []ProviderOption{WithRoot("a", String()), WithRoot("a", Int())},
			wantErr: `duplicate root name: "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.opts...)

			assert.Nil(t, provider)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
