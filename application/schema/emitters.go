package schema

import (
	"sort"

	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/errors"
	"github.com/reglet-dev/schemagen/domain/ports"
)

// emit builds the body of a resolved descriptor. discriminator, when not
// empty, is exposed as a constant property of a record.
func (g *Generator) emit(t ResolvedType, w walk, discriminator string) (*entities.Fragment, error) {
	switch shape := entities.Classify(t.descriptor.Kind()); shape {
	case entities.ShapeNumber:
		return g.emitNumber(t), nil
	case entities.ShapeString:
		return g.emitString(t), nil
	case entities.ShapeBoolean:
		return g.header(t, shape, false), nil
	case entities.ShapeArray:
		return g.emitArray(t, w)
	case entities.ShapeObjectMap:
		return g.emitMap(t, w)
	case entities.ShapeTaggedUnion:
		return g.emitUnion(t, w)
	default:
		return g.emitObject(t, w, discriminator)
	}
}

// header starts a fragment with the keys shared by every shape: the type (or
// the nullable oneOf), enum members of enum kinds and the description.
func (g *Generator) header(t ResolvedType, shape entities.ShapeCategory, skipType bool) *entities.Fragment {
	f := entities.NewFragment()
	switch {
	case skipType:
	case t.nullable:
		f.Set(entities.KeyOneOf, []*entities.Fragment{
			entities.NewFragment().Set(entities.KeyType, "null"),
			entities.NewFragment().Set(entities.KeyType, shape.JSONType()),
		})
	default:
		f.Set(entities.KeyType, shape.JSONType())
	}

	if t.descriptor.Kind() == entities.KindEnum {
		f.Set(entities.KeyEnum, sortedUnique(ports.ElementNames(t.descriptor)))
	}
	if description, ok := t.annotations.Description(); ok {
		f.Set(entities.KeyDescription, description)
	}
	return f
}

func (g *Generator) emitNumber(t ResolvedType) *entities.Fragment {
	f := g.header(t, entities.ShapeNumber, false)
	kind := t.descriptor.Kind()
	switch {
	case kind.IsInteger():
		if r, ok := t.annotations.IntRange(); ok {
			f.Set(entities.KeyMinimum, r.Min)
			f.Set(entities.KeyMaximum, r.Max)
		}
	case kind.IsFloating():
		if r, ok := t.annotations.FloatRange(); ok {
			f.Set(entities.KeyMinimum, r.Min)
			f.Set(entities.KeyMaximum, r.Max)
		}
	}
	return f
}

func (g *Generator) emitString(t ResolvedType) *entities.Fragment {
	f := g.header(t, entities.ShapeString, false)
	if pattern, ok := t.annotations.Pattern(); ok {
		f.Set(entities.KeyPattern, pattern)
	}
	if values, ok := t.annotations.StringEnum(); ok {
		f.Set(entities.KeyEnum, sortedUnique(values))
	}
	return f
}

func (g *Generator) emitArray(t ResolvedType, w walk) (*entities.Fragment, error) {
	f := g.header(t, entities.ShapeArray, false)
	if t.descriptor.ElementCount() == 0 {
		return f, nil
	}
	items, err := g.synthesize(t.descriptor.ElementDescriptor(0), t.descriptor.ElementAnnotations(0), w.child("[]"), false)
	if err != nil {
		return nil, err
	}
	f.Set(entities.KeyItems, items)
	return f, nil
}

func (g *Generator) emitMap(t ResolvedType, w walk) (*entities.Fragment, error) {
	d := t.descriptor
	if d.ElementCount() != 2 {
		return nil, w.fail(&errors.NonStringMapKeyError{Map: d.SerialName(), KeyKind: entities.KindClass})
	}

	key, err := g.resolve(d.ElementDescriptor(0), d.ElementAnnotations(0), w)
	if err != nil {
		return nil, err
	}
	if !key.descriptor.Kind().IsStringLike() {
		return nil, w.fail(&errors.NonStringMapKeyError{Map: d.SerialName(), KeyKind: key.descriptor.Kind()})
	}

	f := g.header(t, entities.ShapeObjectMap, false)
	values, err := g.synthesize(d.ElementDescriptor(1), d.ElementAnnotations(1), w.child("{}"), false)
	if err != nil {
		return nil, err
	}
	f.Set(entities.KeyAdditionalProperties, values)
	return f, nil
}

// emitObject emits a record. Every field is required unless it is both
// nullable and optional: encoders always write non-nullable fields.
// Nullability is the resolved one, the same that decides the property's
// null alternative.
func (g *Generator) emitObject(t ResolvedType, w walk, discriminator string) (*entities.Fragment, error) {
	d := t.descriptor
	f := g.header(t, entities.ShapeObject, false)

	properties := entities.NewFragment()
	var required []string
	if discriminator != "" {
		properties.Set(g.discriminator, entities.NewFragment().Set(entities.KeyConst, discriminator))
		required = append(required, g.discriminator)
	}

	for i := 0; i < d.ElementCount(); i++ {
		name := d.ElementName(i)
		child := d.ElementDescriptor(i)

		property, err := g.synthesize(child, d.ElementAnnotations(i), w.child("."+name), false)
		if err != nil {
			return nil, err
		}
		properties.Set(name, property)

		if d.IsElementOptional(i) {
			resolved, err := ResolveType(g.provider, child, d.ElementAnnotations(i))
			if err != nil {
				return nil, err
			}
			if resolved.IsNullable() {
				continue
			}
		}
		if !contains(required, name) {
			required = append(required, name)
		}
	}

	if properties.Len() > 0 {
		f.Set(entities.KeyProperties, properties)
	}
	if len(required) > 0 {
		f.Set(entities.KeyRequired, required)
	}
	if g.closedObjects {
		f.Set(entities.KeyAdditionalProperties, false)
	}
	return f, nil
}

type variant struct {
	descriptor  ports.TypeDescriptor
	tag         string
	annotations entities.Annotations
}

// variants lists closed variants followed by open implementations registered
// with the provider, unique by tag and sorted by tag.
func (g *Generator) variants(d ports.TypeDescriptor) []variant {
	seen := make(map[string]bool)
	var out []variant
	for i := 0; i < d.ElementCount(); i++ {
		tag := d.ElementName(i)
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, variant{
			descriptor:  d.ElementDescriptor(i),
			tag:         tag,
			annotations: d.ElementAnnotations(i),
		})
	}
	if g.provider != nil {
		for _, impl := range g.provider.Implementations(d.SerialName()) {
			tag := impl.SerialName()
			if seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, variant{descriptor: impl, tag: tag})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].tag < out[j].tag })
	return out
}

func (g *Generator) emitUnion(t ResolvedType, w walk) (*entities.Fragment, error) {
	d := t.descriptor
	variants := g.variants(d)
	if len(variants) == 0 {
		return nil, w.fail(&errors.EmptyUnionError{Union: d.SerialName()})
	}

	tags := make([]string, len(variants))
	for i, v := range variants {
		tags[i] = v.tag
	}

	var anyOf []*entities.Fragment
	if t.nullable {
		anyOf = append(anyOf, entities.NewFragment().Set(entities.KeyType, "null"))
	}
	for _, v := range variants {
		schema, err := g.emitVariant(v, w.child("<"+v.tag+">"))
		if err != nil {
			return nil, err
		}
		anyOf = append(anyOf, schema)
	}

	f := g.header(t, entities.ShapeTaggedUnion, true)
	f.Set(entities.KeyProperties, entities.NewFragment().Set(g.discriminator,
		entities.NewFragment().
			Set(entities.KeyType, "string").
			Set(entities.KeyEnum, tags)))
	f.Set(entities.KeyAnyOf, anyOf)
	f.Set(entities.KeyRequired, []string{g.discriminator})
	return f, nil
}

// emitVariant builds a union member in place so its properties always start
// with the discriminator constant. Members that are not records are
// synthesized like any other use site.
func (g *Generator) emitVariant(v variant, w walk) (*entities.Fragment, error) {
	if w.depth > g.maxDepth {
		return nil, w.fail(&errors.MaxDepthError{Limit: g.maxDepth, Path: w.path})
	}
	t, err := g.resolve(v.descriptor, v.annotations, w)
	if err != nil {
		return nil, err
	}
	if entities.Classify(t.descriptor.Kind()) != entities.ShapeObject {
		return g.synthesize(v.descriptor, v.annotations, w, false)
	}
	return g.emitObject(t, w, v.tag)
}

func sortedUnique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
