package parser

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/errors"
	"github.com/reglet-dev/schemagen/domain/ports"
	"github.com/reglet-dev/schemagen/infrastructure/descriptor"
)

// Kinds of catalog types.
const (
	catalogClass  = "class"
	catalogObject = "object"
	catalogEnum   = "enum"
	catalogSealed = "sealed"
	catalogOpen   = "open"
	catalogInline = "inline"
)

// YAMLCatalogParser reads type catalogs: named types, contextual types, open
// union implementations and the roots to generate schemas for.
//
//	types:
//	  Shape:
//	    kind: sealed
//	    variants:
//	      - {tag: circle, type: Circle}
//	  Circle:
//	    fields:
//	      - {name: radius, type: double, range: {min: 0, max: 100}}
//	      - {name: label, type: string?, optional: true}
//
// Type expressions are primitive names (boolean, byte, short, int, long,
// float, double, char, string), catalog type names, list<T> and map<K,V>. A
// trailing '?' makes the type nullable.
type YAMLCatalogParser struct{}

var _ ports.CatalogParser = (*YAMLCatalogParser)(nil)

// NewYAMLCatalogParser creates a new YAMLCatalogParser.
func NewYAMLCatalogParser() *YAMLCatalogParser {
	return &YAMLCatalogParser{}
}

// Parse implements ports.CatalogParser.
func (p *YAMLCatalogParser) Parse(data []byte) (ports.DescriptorCatalog, error) {
	return p.ParseProvider(data)
}

// ParseProvider parses a catalog into a provider that also resolves the
// catalog's contextual types and open implementations.
func (p *YAMLCatalogParser) ParseProvider(data []byte) (*descriptor.Provider, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return newCatalogBuilder(doc).build()
}

type catalogDocument struct {
	Contextual      map[string]contextualSpec `yaml:"contextual"`
	Implementations map[string][]string       `yaml:"implementations"`
	Types           map[string]typeSpec       `yaml:"types"`
	Roots           []string                  `yaml:"roots"`
}

// AnnotationSpec is the YAML form of the annotations of a type, field,
// variant or contextual type.
type AnnotationSpec struct {
	Range        *rangeSpec `yaml:"range"`
	Description  string     `yaml:"description"`
	Pattern      string     `yaml:"pattern"`
	Format       string     `yaml:"format"`
	Definition   string     `yaml:"definition"`
	Enum         []string   `yaml:"enum"`
	NoDefinition bool       `yaml:"nodefinition"`
}

type rangeSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type fieldSpec struct {
	AnnotationSpec `yaml:",inline"`

	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional"`
}

type variantSpec struct {
	AnnotationSpec `yaml:",inline"`

	Tag  string `yaml:"tag"`
	Type string `yaml:"type"`
}

type typeSpec struct {
	AnnotationSpec `yaml:",inline"`

	Kind     string        `yaml:"kind"`
	Fields   []fieldSpec   `yaml:"fields"`
	Members  []string      `yaml:"members"`
	Variants []variantSpec `yaml:"variants"`
}

type contextualSpec struct {
	AnnotationSpec `yaml:",inline"`

	Type string `yaml:"type"`
}

type catalogBuilder struct {
	doc        catalogDocument
	named      map[string]*descriptor.Descriptor
	contextual map[string]bool
	building   map[string]bool
}

func newCatalogBuilder(doc catalogDocument) *catalogBuilder {
	return &catalogBuilder{
		doc:        doc,
		named:      make(map[string]*descriptor.Descriptor),
		contextual: make(map[string]bool),
		building:   make(map[string]bool),
	}
}

func (b *catalogBuilder) build() (*descriptor.Provider, error) {
	names := sortedKeys(b.doc.Types)
	for name := range b.doc.Contextual {
		if _, clash := b.doc.Types[name]; clash {
			return nil, fmt.Errorf("%q is declared both as a type and as a contextual type", name)
		}
		b.contextual[name] = true
	}

	// Shells first, so fields can refer to any type, including their own.
	for _, name := range names {
		if err := b.declare(name, b.doc.Types[name]); err != nil {
			return nil, fmt.Errorf("type %q: %w", name, err)
		}
	}
	for _, name := range names {
		if _, err := b.lookup(name); err != nil {
			return nil, err
		}
		if err := b.fill(name, b.doc.Types[name]); err != nil {
			return nil, fmt.Errorf("type %q: %w", name, err)
		}
	}

	provider, err := descriptor.NewProvider()
	if err != nil {
		return nil, err
	}

	for _, name := range sortedKeys(b.doc.Contextual) {
		spec := b.doc.Contextual[name]
		concrete, err := b.parseType(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("contextual %q: %w", name, err)
		}
		annotations, err := spec.annotations(concrete.Kind())
		if err != nil {
			return nil, fmt.Errorf("contextual %q: %w", name, err)
		}
		wrapped := descriptor.Inline(name, descriptor.Field("value", concrete, annotations...))
		if err := provider.RegisterContextual(name, wrapped); err != nil {
			return nil, err
		}
	}

	for _, union := range sortedKeys(b.doc.Implementations) {
		for _, expr := range b.doc.Implementations[union] {
			impl, err := b.parseType(expr)
			if err != nil {
				return nil, fmt.Errorf("implementation of %q: %w", union, err)
			}
			if err := provider.RegisterImplementation(union, impl); err != nil {
				return nil, err
			}
		}
	}

	roots := b.doc.Roots
	if len(roots) == 0 {
		roots = names
	}
	for _, expr := range roots {
		root, err := b.parseType(expr)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", expr, err)
		}
		if err := provider.Register(expr, root); err != nil {
			return nil, err
		}
	}
	return provider, nil
}

// declare creates the descriptor of every named type except inline wrappers,
// which need their field first and are built on demand.
func (b *catalogBuilder) declare(name string, spec typeSpec) error {
	switch spec.Kind {
	case "", catalogClass:
		b.named[name] = descriptor.Record(name)
	case catalogObject:
		b.named[name] = descriptor.Object(name)
	case catalogEnum:
		if len(spec.Members) == 0 {
			return fmt.Errorf("enum needs at least one member")
		}
		b.named[name] = descriptor.Enum(name, spec.Members...)
	case catalogSealed:
		b.named[name] = descriptor.Sealed(name)
	case catalogOpen:
		b.named[name] = descriptor.Open(name)
	case catalogInline:
		if len(spec.Fields) != 1 {
			return fmt.Errorf("inline type needs exactly one field, got %d", len(spec.Fields))
		}
	default:
		return fmt.Errorf("unknown kind %q", spec.Kind)
	}
	return nil
}

// lookup returns the descriptor of a named type, building inline wrappers on
// first use.
func (b *catalogBuilder) lookup(name string) (*descriptor.Descriptor, error) {
	if d, ok := b.named[name]; ok {
		return d, nil
	}
	spec, ok := b.doc.Types[name]
	if !ok || spec.Kind != catalogInline {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if b.building[name] {
		return nil, fmt.Errorf("inline type %q wraps itself", name)
	}
	b.building[name] = true
	defer delete(b.building, name)

	field, err := b.field(spec.Fields[0])
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", name, err)
	}
	d := descriptor.Inline(name, field)
	b.named[name] = d
	return d, nil
}

func (b *catalogBuilder) fill(name string, spec typeSpec) error {
	d := b.named[name]

	switch spec.Kind {
	case "", catalogClass:
		for _, f := range spec.Fields {
			field, err := b.field(f)
			if err != nil {
				return err
			}
			d.AddField(field)
		}
	case catalogSealed:
		if len(spec.Variants) == 0 {
			return fmt.Errorf("sealed type needs at least one variant")
		}
		for _, v := range spec.Variants {
			variant, err := b.parseType(v.Type)
			if err != nil {
				return fmt.Errorf("variant %q: %w", v.Tag, err)
			}
			annotations, err := v.annotations(variant.Kind())
			if err != nil {
				return fmt.Errorf("variant %q: %w", v.Tag, err)
			}
			tag := v.Tag
			if tag == "" {
				tag = variant.SerialName()
			}
			d.AddField(descriptor.Variant(tag, variant, annotations...))
		}
	}

	annotations, err := spec.annotations(d.Kind())
	if err != nil {
		return err
	}
	d.Annotate(annotations...)
	return nil
}

func (b *catalogBuilder) field(f fieldSpec) (descriptor.Element, error) {
	if f.Name == "" {
		return descriptor.Element{}, fmt.Errorf("field without a name")
	}
	d, err := b.parseType(f.Type)
	if err != nil {
		return descriptor.Element{}, fmt.Errorf("field %q: %w", f.Name, err)
	}
	annotations, err := f.annotations(d.Kind())
	if err != nil {
		return descriptor.Element{}, fmt.Errorf("field %q: %w", f.Name, err)
	}
	if f.Optional {
		return descriptor.OptionalField(f.Name, d, annotations...), nil
	}
	return descriptor.Field(f.Name, d, annotations...), nil
}

// parseType parses a type expression.
func (b *catalogBuilder) parseType(expr string) (*descriptor.Descriptor, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("missing type")
	}

	nullable := strings.HasSuffix(expr, "?")
	expr = strings.TrimSpace(strings.TrimSuffix(expr, "?"))

	d, err := b.parseBase(expr)
	if err != nil {
		return nil, err
	}
	if nullable {
		return d.Nullable(), nil
	}
	return d, nil
}

func (b *catalogBuilder) parseBase(expr string) (*descriptor.Descriptor, error) {
	if args, ok := generic(expr, "list"); ok {
		if len(args) != 1 {
			return nil, fmt.Errorf("list takes one type argument: %q", expr)
		}
		element, err := b.parseType(args[0])
		if err != nil {
			return nil, err
		}
		return descriptor.List(element), nil
	}
	if args, ok := generic(expr, "map"); ok {
		if len(args) != 2 {
			return nil, fmt.Errorf("map takes two type arguments: %q", expr)
		}
		key, err := b.parseType(args[0])
		if err != nil {
			return nil, err
		}
		value, err := b.parseType(args[1])
		if err != nil {
			return nil, err
		}
		return descriptor.Map(key, value), nil
	}
	if kind, ok := entities.ParseKind(expr); ok && isPrimitive(kind) {
		return descriptor.Primitive(kind), nil
	}
	if b.contextual[expr] {
		return descriptor.Contextual(expr), nil
	}
	return b.lookup(expr)
}

// generic splits "name<a, b>" into its top-level arguments.
func generic(expr, name string) ([]string, bool) {
	if !strings.HasPrefix(expr, name+"<") || !strings.HasSuffix(expr, ">") {
		return nil, false
	}
	inner := expr[len(name)+1 : len(expr)-1]

	var args []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(inner[start:])), true
}

func isPrimitive(kind entities.Kind) bool {
	switch kind {
	case entities.KindBoolean, entities.KindChar, entities.KindString:
		return true
	}
	return kind.IsInteger() || kind.IsFloating()
}

// annotations converts the spec for a type of the given kind. Ranges become
// integer ranges unless the kind is floating point or a bound is fractional.
func (a AnnotationSpec) annotations(kind entities.Kind) (entities.Annotations, error) {
	var out entities.Annotations

	if a.Description != "" {
		out = append(out, entities.Description{Lines: strings.Split(strings.TrimRight(a.Description, "\n"), "\n")})
	}
	if len(a.Enum) > 0 {
		out = append(out, entities.StringEnum{Values: a.Enum})
	}
	if r := a.Range; r != nil {
		if r.Min > r.Max {
			return nil, fmt.Errorf("range minimum %v is above maximum %v", r.Min, r.Max)
		}
		if kind.IsFloating() || r.Min != math.Trunc(r.Min) || r.Max != math.Trunc(r.Max) {
			out = append(out, entities.FloatRange{Min: r.Min, Max: r.Max})
		} else {
			out = append(out, entities.IntRange{Min: int64(r.Min), Max: int64(r.Max)})
		}
	}
	if a.Pattern != "" {
		if _, err := regexp2.Compile(a.Pattern, regexp2.ECMAScript); err != nil {
			return nil, &errors.InvalidPatternError{Regex: a.Pattern, Err: err}
		}
		out = append(out, entities.Pattern{Regex: a.Pattern})
	}
	if a.Format != "" {
		format, ok := entities.ParseFormat(a.Format)
		if !ok {
			return nil, fmt.Errorf("unknown format %q", a.Format)
		}
		out = append(out, entities.Format{Format: format})
	}
	switch {
	case a.Definition != "" && a.NoDefinition:
		return nil, fmt.Errorf("definition and nodefinition are exclusive")
	case a.Definition != "":
		out = append(out, entities.Definition{ID: a.Definition})
	case a.NoDefinition:
		out = append(out, entities.NoDefinition{})
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
