// Package schematest provides a test harness for schema generation: a table
// runner and assertions on generated documents.
package schematest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/schemagen/application/schema"
	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/ports"
)

// TestCase defines a schema generation test case.
type TestCase struct {
	Descriptor ports.TypeDescriptor
	// Validate inspects the outcome. err is nil when generation succeeded.
	Validate func(t *testing.T, doc *entities.Fragment, err error)
	Name     string
	// Want, when set, is compared with the generated document as JSON.
	Want    string
	Options []schema.Option
}

// RunSchemaTests generates a document for every case with a fresh generator.
func RunSchemaTests(t *testing.T, tests []TestCase) {
	t.Helper()

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			doc, err := schema.NewGenerator(tc.Options...).Generate(tc.Descriptor)

			if tc.Want != "" {
				if err != nil {
					t.Fatalf("generate %s: %v", tc.Descriptor.SerialName(), err)
				}
				AssertSchemaJSON(t, tc.Want, doc)
			}
			if tc.Validate != nil {
				tc.Validate(t, doc, err)
			}
		})
	}
}

// AssertSchemaJSON compares doc with the expected JSON text, ignoring
// formatting and key order, and reports a diff on mismatch.
func AssertSchemaJSON(t *testing.T, want string, doc *entities.Fragment) {
	t.Helper()

	var expected any
	if err := json.Unmarshal([]byte(want), &expected); err != nil {
		t.Fatalf("expected JSON is invalid: %v", err)
	}
	actual := decode(t, doc)

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}

// AssertKeys checks the key order of the fragment found by following path.
func AssertKeys(t *testing.T, doc *entities.Fragment, want []string, path ...string) {
	t.Helper()

	current := doc
	for _, key := range path {
		next, ok := current.Fragment(key)
		if !ok {
			t.Fatalf("no fragment at %q", strings.Join(path, "."))
		}
		current = next
	}
	if diff := cmp.Diff(want, current.Keys()); diff != "" {
		t.Errorf("key order at %q (-want +got):\n%s", strings.Join(path, "."), diff)
	}
}

// Compile compiles doc as a draft-07 schema.
func Compile(t *testing.T, doc *entities.Fragment) *jsonschema.Schema {
	t.Helper()

	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal document: %v", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource("schema.json", strings.NewReader(string(b))); err != nil {
		t.Fatalf("failed to add schema resource: %v", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		t.Fatalf("generated document is not a valid draft-07 schema: %v", err)
	}
	return compiled
}

// AssertAccepts asserts that every instance validates against doc.
func AssertAccepts(t *testing.T, doc *entities.Fragment, instances ...string) {
	t.Helper()
	compiled := Compile(t, doc)
	for _, instance := range instances {
		if err := compiled.Validate(decodeText(t, instance)); err != nil {
			t.Errorf("expected %s to validate: %v", instance, err)
		}
	}
}

// AssertRejects asserts that no instance validates against doc.
func AssertRejects(t *testing.T, doc *entities.Fragment, instances ...string) {
	t.Helper()
	compiled := Compile(t, doc)
	for _, instance := range instances {
		if err := compiled.Validate(decodeText(t, instance)); err == nil {
			t.Errorf("expected %s to be rejected", instance)
		}
	}
}

func decode(t *testing.T, doc *entities.Fragment) any {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal document: %v", err)
	}
	return decodeText(t, string(b))
}

func decodeText(t *testing.T, text string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		t.Fatalf("invalid JSON %s: %v", text, err)
	}
	return v
}
