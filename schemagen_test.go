package schemagen

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/schemagen/application/config"
	"github.com/reglet-dev/schemagen/application/schema"
	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/infrastructure/descriptor"
	"github.com/reglet-dev/schemagen/infrastructure/reflection"
	"github.com/reglet-dev/schemagen/internal/testutil"
	"github.com/reglet-dev/schemagen/testing/schematest"
)

func example() *descriptor.Descriptor {
	return descriptor.Record("Example",
		descriptor.Field("name", descriptor.String()),
		descriptor.Field("count", descriptor.Int(), entities.IntRange{Min: 0, Max: 100}),
	)
}

func TestEncodeToSchema(t *testing.T) {
	got, err := EncodeToSchema(example())
	require.NoError(t, err)

	want := `{
  "$schema": "http://json-schema.org/draft-07/schema",
  "title": "Example",
  "type": "object",
  "properties": {
    "name": {
      "type": "string"
    },
    "count": {
      "type": "number",
      "minimum": 0,
      "maximum": 100
    }
  },
  "required": [
    "name",
    "count"
  ],
  "definitions": {}
}`
	assert.Equal(t, want, got)
	testutil.AssertTopLevelKeys(t, []string{"$schema", "title", "type", "properties", "required", "definitions"}, got)
}

func TestEncodeToSchema_SettingsIndent(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Indent = 0

	got, err := EncodeToSchema(descriptor.String(), WithSettings(settings))
	require.NoError(t, err)

	assert.Equal(t, `{"$schema":"http://json-schema.org/draft-07/schema","type":"string","definitions":{}}`, got)
}

func TestGenerate_Options(t *testing.T) {
	shape := descriptor.Open("Shape")
	provider, err := descriptor.NewProvider(
		descriptor.WithImplementation("Shape", descriptor.Record("circle", descriptor.Field("radius", descriptor.Double()))),
	)
	require.NoError(t, err)

	settings := config.DefaultSettings()
	settings.Discriminator = "kind"

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	doc, err := Generate(shape,
		WithProvider(provider),
		WithSettings(settings),
		WithLogger(logger),
		WithGeneratorOptions(schema.WithClosedObjects(true)),
	)
	require.NoError(t, err)

	schematest.AssertAccepts(t, doc, `{"kind":"circle","radius":1}`)
	schematest.AssertRejects(t, doc, `{"type":"circle","radius":1}`, `{"kind":"circle","radius":1,"extra":true}`)
	assert.Contains(t, logs.String(), "schema generated")
}

func TestReflect(t *testing.T) {
	type Server struct {
		Host       string `json:"host" jsonschema:"description=DNS name"`
		Port       int    `json:"port,omitempty" jsonschema:"minimum=1,maximum=65535"`
		MaxRetries int
	}

	doc, err := Reflect(Server{}, WithReflectorOptions(reflection.WithSnakeCase()))
	require.NoError(t, err)

	schematest.AssertSchemaJSON(t, `{
		"$schema": "http://json-schema.org/draft-07/schema",
		"title": "schemagen.Server",
		"type": "object",
		"properties": {
			"host": {"type": "string", "description": "DNS name"},
			"port": {"type": "number", "minimum": 1, "maximum": 65535},
			"max_retries": {"type": "number"}
		},
		"required": ["host", "port", "max_retries"],
		"definitions": {}
	}`, doc)
	schematest.AssertAccepts(t, doc, `{"host":"a","port":80,"max_retries":3}`)
	schematest.AssertRejects(t, doc, `{"host":"a","port":0,"max_retries":3}`, `{"host":"a","max_retries":3}`)
}

func TestReflect_Errors(t *testing.T) {
	_, err := Reflect(make(chan int))
	assert.ErrorContains(t, err, "chan values have no JSON form")

	_, err = Reflect(1, WithReflectorOptions(reflection.WithUnion[int]()))
	assert.ErrorContains(t, err, "is not an interface type")
}

func TestNewDocumentEncoder(t *testing.T) {
	doc, err := Generate(example())
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		out, err := NewDocumentEncoder(config.DefaultSettings()).Encode(doc)
		require.NoError(t, err)
		testutil.AssertJSONEqual(t, `{
			"$schema": "http://json-schema.org/draft-07/schema",
			"title": "Example",
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"count": {"type": "number", "minimum": 0, "maximum": 100}
			},
			"required": ["name", "count"],
			"definitions": {}
		}`, string(out))
	})

	t.Run("yaml", func(t *testing.T) {
		settings := config.DefaultSettings()
		settings.Output = config.OutputYAML

		out, err := NewDocumentEncoder(settings).Encode(doc)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(out, &decoded))
		assert.Equal(t, "Example", decoded["title"])
		assert.True(t, strings.HasPrefix(string(out), "$schema: "))
	})
}
