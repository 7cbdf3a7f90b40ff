package ports

import "github.com/reglet-dev/schemagen/domain/entities"

// SettingsParser parses raw configuration bytes into a key-value map.
type SettingsParser interface {
	Parse(data []byte) (map[string]any, error)
}

// CatalogParser parses a type catalog document into descriptors.
type CatalogParser interface {
	Parse(data []byte) (DescriptorCatalog, error)
}

// DocumentEncoder renders a schema document.
type DocumentEncoder interface {
	Encode(document *entities.Fragment) ([]byte, error)
}

// ValueEncoder renders a value the way it is serialized, as a JSON text.
type ValueEncoder interface {
	Encode(value any) ([]byte, error)
}
