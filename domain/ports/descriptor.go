package ports

import "github.com/reglet-dev/schemagen/domain/entities"

// TypeDescriptor is the structural description of a serializable type.
//
// Element layout depends on Kind: records list their fields, enums their
// members, lists a single element, maps the key then the value, tagged unions
// one element per closed variant (the element name is the variant tag) and
// inline wrappers exactly one element.
type TypeDescriptor interface {
	// SerialName identifies the type. Contextual placeholders are resolved by it.
	SerialName() string
	Kind() entities.Kind
	IsNullable() bool
	// IsInline reports whether the type is a transparent single-field wrapper.
	IsInline() bool
	// Annotations returns the annotations declared on the type itself.
	Annotations() entities.Annotations

	ElementCount() int
	ElementName(index int) string
	ElementDescriptor(index int) TypeDescriptor
	// ElementAnnotations returns the annotations declared at the element site.
	ElementAnnotations(index int) entities.Annotations
	// IsElementOptional reports whether the element has a default value.
	IsElementOptional(index int) bool
}

// DescriptorProvider supplies what a descriptor tree cannot express on its own.
type DescriptorProvider interface {
	// Contextual resolves a contextual placeholder to its registered concrete descriptor.
	Contextual(serialName string) (TypeDescriptor, bool)
	// Implementations lists the open polymorphic implementations registered
	// for the given union.
	Implementations(unionSerialName string) []TypeDescriptor
}

// ElementIndex returns the index of the element called name, or -1.
func ElementIndex(d TypeDescriptor, name string) int {
	for i := 0; i < d.ElementCount(); i++ {
		if d.ElementName(i) == name {
			return i
		}
	}
	return -1
}

// ElementNames returns the element names of d in declaration order.
func ElementNames(d TypeDescriptor) []string {
	names := make([]string, d.ElementCount())
	for i := range names {
		names[i] = d.ElementName(i)
	}
	return names
}
