package entities

// Kind is the structural kind of a type descriptor.
type Kind int

// Descriptor kinds. Primitive kinds map to JSON leaves, the rest to
// containers, records or tagged unions.
const (
	KindClass Kind = iota
	KindObject
	KindBoolean
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindChar
	KindString
	KindEnum
	KindList
	KindMap
	KindSealed
	KindOpen
	KindContextual
)

var kindNames = map[Kind]string{
	KindClass:      "class",
	KindObject:     "object",
	KindBoolean:    "boolean",
	KindByte:       "byte",
	KindShort:      "short",
	KindInt:        "int",
	KindLong:       "long",
	KindFloat:      "float",
	KindDouble:     "double",
	KindChar:       "char",
	KindString:     "string",
	KindEnum:       "enum",
	KindList:       "list",
	KindMap:        "map",
	KindSealed:     "sealed",
	KindOpen:       "open",
	KindContextual: "contextual",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindClass, false
}

// IsInteger reports whether values of this kind are whole numbers.
func (k Kind) IsInteger() bool {
	switch k {
	case KindByte, KindShort, KindInt, KindLong:
		return true
	}
	return false
}

// IsFloating reports whether values of this kind are floating point numbers.
func (k Kind) IsFloating() bool {
	return k == KindFloat || k == KindDouble
}

// IsStringLike reports whether values of this kind serialize as JSON strings.
func (k Kind) IsStringLike() bool {
	return k == KindString || k == KindChar || k == KindEnum
}

// ShapeCategory is the JSON Schema shape a descriptor is emitted as.
type ShapeCategory int

const (
	ShapeObject ShapeCategory = iota
	ShapeNumber
	ShapeString
	ShapeBoolean
	ShapeArray
	ShapeObjectMap
	ShapeTaggedUnion
)

func (s ShapeCategory) String() string {
	switch s {
	case ShapeNumber:
		return "number"
	case ShapeString:
		return "string"
	case ShapeBoolean:
		return "boolean"
	case ShapeArray:
		return "array"
	case ShapeObjectMap:
		return "object-map"
	case ShapeTaggedUnion:
		return "tagged-union"
	default:
		return "object"
	}
}

// JSONType returns the value of the JSON Schema "type" keyword for the shape.
func (s ShapeCategory) JSONType() string {
	switch s {
	case ShapeNumber:
		return "number"
	case ShapeString:
		return "string"
	case ShapeBoolean:
		return "boolean"
	case ShapeArray:
		return "array"
	default:
		return "object"
	}
}

// Classify maps a descriptor kind to its shape category.
// Kinds without a dedicated shape are records.
func Classify(k Kind) ShapeCategory {
	switch k {
	case KindByte, KindShort, KindInt, KindLong, KindFloat, KindDouble:
		return ShapeNumber
	case KindString, KindChar, KindEnum:
		return ShapeString
	case KindBoolean:
		return ShapeBoolean
	case KindList:
		return ShapeArray
	case KindMap:
		return ShapeObjectMap
	case KindSealed, KindOpen:
		return ShapeTaggedUnion
	default:
		return ShapeObject
	}
}
