// Package schema synthesizes JSON Schema draft-07 documents from type
// descriptors.
//
// A Generator walks a descriptor tree, resolves the annotations of every use
// site against the annotations of its type, unwraps contextual and inline
// types and emits one fragment per node. Named definitions are memoized in a
// Definitions table created for each Generate call, which also breaks cycles in
// recursive types.
//
//	gen := schema.NewGenerator(schema.WithDiscriminator("kind"))
//	doc, err := gen.Generate(descriptor)
package schema

import (
	"io"
	"log/slog"
	"strings"

	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/errors"
	"github.com/reglet-dev/schemagen/domain/ports"
)

// DraftVersion is the value of the top-level "$schema" keyword.
const DraftVersion = "http://json-schema.org/draft-07/schema"

const (
	defaultDiscriminator = "type"
	defaultMaxDepth      = 256
	// Chains of contextual and inline types longer than this are treated as
	// a registration loop.
	maxUnwrap = 32
)

// Generator turns descriptors into JSON Schema documents. It is immutable
// after construction; concurrent Generate calls are safe because each call
// uses its own Definitions.
type Generator struct {
	provider            ports.DescriptorProvider
	logger              *slog.Logger
	discriminator       string
	builtinPrefixes     []string
	maxDepth            int
	autoDefinitions     bool
	exposeDiscriminator bool
	closedObjects       bool
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		discriminator:   defaultDiscriminator,
		builtinPrefixes: []string{"builtin."},
		maxDepth:        defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Discriminator returns the discriminator property of tagged unions.
func (g *Generator) Discriminator() string {
	return g.discriminator
}

// Generate builds the complete document for root: "$schema", an optional
// "title", the root schema and the "definitions" section. Nothing is returned
// when any part fails.
func (g *Generator) Generate(root ports.TypeDescriptor) (*entities.Fragment, error) {
	defs := NewDefinitions(g.autoDefinitions, g.logger)

	doc := entities.NewFragment().Set(entities.KeySchema, DraftVersion)
	if name := root.SerialName(); !g.isBuiltin(name) {
		doc.Set(entities.KeyTitle, name)
	}

	body, err := g.Synthesize(root, nil, defs, g.exposeDiscriminator)
	if err != nil {
		return nil, err
	}
	doc.Merge(body)

	definitions, err := defs.Materialize()
	if err != nil {
		return nil, err
	}
	doc.Set(entities.KeyDefinitions, definitions)

	g.logger.Debug("schema generated", "type", root.SerialName(), "definitions", definitions.Len())
	return doc, nil
}

// Synthesize returns the schema of one use site of descriptor. site holds the
// annotations declared at the use site. Definitions referenced by the result
// are registered in defs.
func (g *Generator) Synthesize(
	descriptor ports.TypeDescriptor,
	site entities.Annotations,
	defs *Definitions,
	exposeDiscriminator bool,
) (*entities.Fragment, error) {
	return g.synthesize(descriptor, site, walk{defs: defs, path: "$"}, exposeDiscriminator)
}

func (g *Generator) isBuiltin(name string) bool {
	if name == "" {
		return true
	}
	for _, prefix := range g.builtinPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// walk carries the per-call traversal state.
type walk struct {
	defs  *Definitions
	path  string
	depth int
}

func (w walk) child(segment string) walk {
	return walk{defs: w.defs, path: w.path + segment, depth: w.depth + 1}
}

func (w walk) fail(err error) error {
	return &errors.SchemaError{Err: err, Path: w.path}
}

func (g *Generator) synthesize(
	descriptor ports.TypeDescriptor,
	site entities.Annotations,
	w walk,
	expose bool,
) (*entities.Fragment, error) {
	if w.depth > g.maxDepth {
		return nil, w.fail(&errors.MaxDepthError{Limit: g.maxDepth, Path: w.path})
	}

	t, err := g.resolve(descriptor, site, w)
	if err != nil {
		return nil, err
	}

	key := DefinitionKey{
		Descriptor:  t.descriptor,
		Annotations: t.annotations,
		Nullable:    t.nullable,
	}
	if expose && entities.Classify(t.descriptor.Kind()) == entities.ShapeObject {
		key.Discriminator = t.descriptor.SerialName()
	}

	body := t
	if _, explicit := t.annotations.DefinitionID(); explicit {
		// Every site shares the named body, so site descriptions stay on the reference.
		if body, err = g.resolve(descriptor, withoutDescription(site), w); err != nil {
			return nil, err
		}
	}

	return w.defs.Request(key, func() (*entities.Fragment, error) {
		return g.emit(body, w, key.Discriminator)
	})
}

func (g *Generator) resolve(descriptor ports.TypeDescriptor, site entities.Annotations, w walk) (ResolvedType, error) {
	t, err := ResolveType(g.provider, descriptor, site)
	if err != nil {
		return ResolvedType{}, w.fail(err)
	}
	return t, nil
}

// ResolvedType is a descriptor after contextual and inline substitution,
// with the annotations and nullability collected on the way.
type ResolvedType struct {
	descriptor  ports.TypeDescriptor
	annotations entities.Annotations
	nullable    bool
}

// Descriptor returns the concrete descriptor.
func (t ResolvedType) Descriptor() ports.TypeDescriptor { return t.descriptor }

// Annotations returns the resolved annotations.
func (t ResolvedType) Annotations() entities.Annotations { return t.annotations }

// IsNullable reports whether any substituted descriptor was nullable.
func (t ResolvedType) IsNullable() bool { return t.nullable }

// ResolveType substitutes contextual placeholders and inline wrappers of a use
// site. Annotation layers are collected from the site outwards, and the
// nullability of every substituted descriptor is kept. provider may be nil
// when the tree has no contextual types.
func ResolveType(provider ports.DescriptorProvider, descriptor ports.TypeDescriptor, site entities.Annotations) (ResolvedType, error) {
	layers := []entities.Annotations{site, descriptor.Annotations()}
	nullable := descriptor.IsNullable()
	current := descriptor

	for range maxUnwrap {
		switch {
		case current.Kind() == entities.KindContextual:
			concrete, err := contextual(provider, current)
			if err != nil {
				return ResolvedType{}, err
			}
			layers = append(layers, concrete.Annotations())
			nullable = nullable || concrete.IsNullable()
			current = concrete

		case current.IsInline() && current.ElementCount() == 1:
			inner := current.ElementDescriptor(0)
			layers = append(layers, current.ElementAnnotations(0), inner.Annotations())
			nullable = nullable || inner.IsNullable()
			current = inner

		default:
			return ResolvedType{
				descriptor:  current,
				annotations: entities.ResolveAnnotations(layers...),
				nullable:    nullable,
			}, nil
		}
	}
	return ResolvedType{}, &errors.MaxDepthError{Limit: maxUnwrap, Path: descriptor.SerialName()}
}

func contextual(provider ports.DescriptorProvider, placeholder ports.TypeDescriptor) (ports.TypeDescriptor, error) {
	if provider == nil {
		return nil, &errors.UnresolvedContextualTypeError{SerialName: placeholder.SerialName()}
	}
	concrete, ok := provider.Contextual(placeholder.SerialName())
	if !ok || concrete == nil {
		return nil, &errors.UnresolvedContextualTypeError{SerialName: placeholder.SerialName()}
	}
	return concrete, nil
}
