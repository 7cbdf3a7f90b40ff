package ports

import "github.com/reglet-dev/schemagen/domain/entities"

// FieldValidator checks serialized field values against their declared
// pattern or format.
type FieldValidator interface {
	// Validate checks a single field. Unknown fields and fields without a
	// constraint pass.
	Validate(descriptor TypeDescriptor, field string, value any) error

	// ValidateAll checks every declared field present in values.
	ValidateAll(descriptor TypeDescriptor, values map[string]any) *entities.ValidationResult
}
