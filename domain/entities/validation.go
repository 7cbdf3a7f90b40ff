package entities

// ValidationResult is the outcome of checking the fields of one value.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError describes one field whose serialized text does not match
// its declared pattern or format.
type ValidationError struct {
	Field   string
	Value   string
	Regex   string
	Message string
}
