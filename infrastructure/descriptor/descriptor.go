// Package descriptor builds type descriptors by hand, for types that have no
// Go definition to reflect on (catalog files, tests, external formats).
//
//	node := descriptor.Record("node")
//	node.AddField(descriptor.Field("value", descriptor.String()))
//	node.AddField(descriptor.Field("children", descriptor.List(node)))
package descriptor

import (
	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/ports"
)

// BuiltinPrefix is the serial name prefix of primitive and container types.
const BuiltinPrefix = "builtin."

// Element is a named child of a descriptor: a record field, an enum member, a
// union variant or a container element.
type Element struct {
	Descriptor  ports.TypeDescriptor
	Name        string
	Annotations entities.Annotations
	Optional    bool
}

// Field declares a required record field.
func Field(name string, d ports.TypeDescriptor, annotations ...entities.Annotation) Element {
	return Element{Name: name, Descriptor: d, Annotations: annotations}
}

// OptionalField declares a record field that has a default value.
func OptionalField(name string, d ports.TypeDescriptor, annotations ...entities.Annotation) Element {
	return Element{Name: name, Descriptor: d, Annotations: annotations, Optional: true}
}

// Variant declares a tagged union member.
func Variant(tag string, d ports.TypeDescriptor, annotations ...entities.Annotation) Element {
	return Element{Name: tag, Descriptor: d, Annotations: annotations}
}

// shape is shared by a descriptor and its nullable view, so fields added
// later are visible through both.
type shape struct {
	name        string
	annotations entities.Annotations
	elements    []Element
	kind        entities.Kind
	inline      bool
}

// Descriptor is a hand-built ports.TypeDescriptor.
type Descriptor struct {
	*shape
	nullable bool
}

var _ ports.TypeDescriptor = (*Descriptor)(nil)

func newDescriptor(name string, kind entities.Kind, elements ...Element) *Descriptor {
	return &Descriptor{shape: &shape{name: name, kind: kind, elements: elements}}
}

// Nullable returns a nullable view of d. The view shares fields and
// annotations with d.
func (d *Descriptor) Nullable() *Descriptor {
	return &Descriptor{shape: d.shape, nullable: true}
}

// AddField appends an element and returns d.
func (d *Descriptor) AddField(e Element) *Descriptor {
	d.elements = append(d.elements, e)
	return d
}

// Annotate appends type-level annotations and returns d.
func (d *Descriptor) Annotate(annotations ...entities.Annotation) *Descriptor {
	d.annotations = append(d.annotations, annotations...)
	return d
}

func (d *Descriptor) SerialName() string                { return d.name }
func (d *Descriptor) Kind() entities.Kind               { return d.kind }
func (d *Descriptor) IsNullable() bool                  { return d.nullable }
func (d *Descriptor) IsInline() bool                    { return d.inline }
func (d *Descriptor) Annotations() entities.Annotations { return d.annotations }
func (d *Descriptor) ElementCount() int                 { return len(d.elements) }

func (d *Descriptor) ElementName(index int) string {
	return d.elements[index].Name
}

func (d *Descriptor) ElementDescriptor(index int) ports.TypeDescriptor {
	return d.elements[index].Descriptor
}

func (d *Descriptor) ElementAnnotations(index int) entities.Annotations {
	return d.elements[index].Annotations
}

func (d *Descriptor) IsElementOptional(index int) bool {
	return d.elements[index].Optional
}

// Primitive returns a descriptor of a primitive kind in the builtin namespace.
func Primitive(kind entities.Kind) *Descriptor {
	return newDescriptor(BuiltinPrefix+kind.String(), kind)
}

func Boolean() *Descriptor { return Primitive(entities.KindBoolean) }
func Byte() *Descriptor    { return Primitive(entities.KindByte) }
func Short() *Descriptor   { return Primitive(entities.KindShort) }
func Int() *Descriptor     { return Primitive(entities.KindInt) }
func Long() *Descriptor    { return Primitive(entities.KindLong) }
func Float() *Descriptor   { return Primitive(entities.KindFloat) }
func Double() *Descriptor  { return Primitive(entities.KindDouble) }
func Char() *Descriptor    { return Primitive(entities.KindChar) }
func String() *Descriptor  { return Primitive(entities.KindString) }

// Record returns a record with the given fields.
func Record(name string, fields ...Element) *Descriptor {
	return newDescriptor(name, entities.KindClass, fields...)
}

// Object returns a singleton record without fields.
func Object(name string) *Descriptor {
	return newDescriptor(name, entities.KindObject)
}

// Enum returns an enumeration with the given member names.
func Enum(name string, members ...string) *Descriptor {
	elements := make([]Element, len(members))
	for i, m := range members {
		elements[i] = Element{Name: m, Descriptor: Object(name + "." + m)}
	}
	return newDescriptor(name, entities.KindEnum, elements...)
}

// List returns a list of element.
func List(element ports.TypeDescriptor, annotations ...entities.Annotation) *Descriptor {
	return newDescriptor(BuiltinPrefix+"List<"+element.SerialName()+">", entities.KindList,
		Element{Name: "0", Descriptor: element, Annotations: annotations})
}

// Map returns a map from key to value.
func Map(key, value ports.TypeDescriptor, annotations ...entities.Annotation) *Descriptor {
	return newDescriptor(BuiltinPrefix+"Map<"+key.SerialName()+","+value.SerialName()+">", entities.KindMap,
		Element{Name: "0", Descriptor: key},
		Element{Name: "1", Descriptor: value, Annotations: annotations})
}

// Sealed returns a closed tagged union of the given variants.
func Sealed(name string, variants ...Element) *Descriptor {
	return newDescriptor(name, entities.KindSealed, variants...)
}

// Open returns an open tagged union. Its variants come from the provider.
func Open(name string) *Descriptor {
	return newDescriptor(name, entities.KindOpen)
}

// Inline returns a transparent wrapper around a single field.
func Inline(name string, field Element) *Descriptor {
	d := newDescriptor(name, entities.KindClass, field)
	d.inline = true
	return d
}

// Contextual returns a placeholder resolved by serial name through the provider.
func Contextual(name string) *Descriptor {
	return newDescriptor(name, entities.KindContextual)
}
