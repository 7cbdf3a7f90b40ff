// Package errors provides domain-specific error types for schema synthesis
// and field validation. All error types support errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/schemagen/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can describe themselves as
// a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return entities.NewErrorDetail(entities.ErrorTypeInternal, err.Error())
}

func schemaDetail(err error, code string) *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeSchema, err.Error()).WithCode(code)
}

func configDetail(err error, field string) *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeConfig, err.Error()).WithCode(field)
}

// IsConfigurationDefect reports whether err stems from how a type was declared
// or registered, as opposed to a runtime validation failure.
func IsConfigurationDefect(err error) bool {
	var (
		empty      *EmptyUnionError
		mapKey     *NonStringMapKeyError
		contextual *UnresolvedContextualTypeError
		collision  *DefinitionCollisionError
		depth      *MaxDepthError
		goType     *UnsupportedTypeError
	)
	return stdErrors.As(err, &empty) || stdErrors.As(err, &mapKey) ||
		stdErrors.As(err, &contextual) || stdErrors.As(err, &collision) ||
		stdErrors.As(err, &depth) || stdErrors.As(err, &goType)
}

// EmptyUnionError is returned when a tagged union has no known variant.
type EmptyUnionError struct {
	Union string
}

func (e *EmptyUnionError) Error() string {
	return fmt.Sprintf("tagged union %s has no registered variants", e.Union)
}

// ToErrorDetail implements DetailedError.
func (e *EmptyUnionError) ToErrorDetail() *entities.ErrorDetail {
	return schemaDetail(e, "empty_union")
}

// NonStringMapKeyError is returned for maps whose key does not serialize as a string.
type NonStringMapKeyError struct {
	Map     string
	KeyKind entities.Kind
}

func (e *NonStringMapKeyError) Error() string {
	return fmt.Sprintf("map %s has %s keys, JSON objects only allow string keys", e.Map, e.KeyKind)
}

// ToErrorDetail implements DetailedError.
func (e *NonStringMapKeyError) ToErrorDetail() *entities.ErrorDetail {
	return schemaDetail(e, "non_string_map_key")
}

// UnresolvedContextualTypeError is returned when a contextual placeholder has
// no registered concrete descriptor.
type UnresolvedContextualTypeError struct {
	SerialName string
}

func (e *UnresolvedContextualTypeError) Error() string {
	return fmt.Sprintf("no descriptor registered for contextual type %s", e.SerialName)
}

// ToErrorDetail implements DetailedError.
func (e *UnresolvedContextualTypeError) ToErrorDetail() *entities.ErrorDetail {
	return schemaDetail(e, "unresolved_contextual")
}

// DefinitionCollisionError is returned when two different definition keys
// produce the same definition id.
type DefinitionCollisionError struct {
	ID       string
	Existing string
	Incoming string
}

func (e *DefinitionCollisionError) Error() string {
	return fmt.Sprintf("definition id %q already used by %s, cannot reuse it for %s", e.ID, e.Existing, e.Incoming)
}

// ToErrorDetail implements DetailedError.
func (e *DefinitionCollisionError) ToErrorDetail() *entities.ErrorDetail {
	return schemaDetail(e, "definition_collision").WithDetail("id", e.ID)
}

// MaxDepthError is returned when a descriptor tree nests deeper than allowed.
type MaxDepthError struct {
	Limit int
	Path  string
}

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("schema nesting exceeds %d levels at %s", e.Limit, e.Path)
}

// ToErrorDetail implements DetailedError.
func (e *MaxDepthError) ToErrorDetail() *entities.ErrorDetail {
	return schemaDetail(e, "max_depth")
}

// UnsupportedTypeError is returned when a Go type cannot be described.
type UnsupportedTypeError struct {
	Type   string
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("cannot describe Go type %s: %s", e.Type, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *UnsupportedTypeError) ToErrorDetail() *entities.ErrorDetail {
	return schemaDetail(e, "unsupported_type").WithDetail("type", e.Type)
}

// SchemaError attaches the location of a failing descriptor to a synthesis error.
type SchemaError struct {
	Err  error
	Path string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema synthesis failed at %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	cause := ToErrorDetail(e.Err)
	detail := schemaDetail(e, cause.Code).WithPath(e.Path)
	detail.Wrapped = cause
	return detail
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return configDetail(e, e.Field)
}

// FormatValidationError reports a field whose serialized text does not match
// its pattern or format regex.
type FormatValidationError struct {
	Field string
	Value string
	Regex string
}

func (e *FormatValidationError) Error() string {
	return fmt.Sprintf("cannot validate the field '%s' with value '%s'\nregex:%s", e.Field, e.Value, e.Regex)
}

// ToErrorDetail implements DetailedError.
func (e *FormatValidationError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(entities.ErrorTypeValidation, e.Error()).
		WithCode(e.Field).
		WithDetail("value", e.Value).
		WithDetail("regex", e.Regex)
}

// InvalidPatternError is returned when a declared pattern does not compile.
type InvalidPatternError struct {
	Err   error
	Field string
	Regex string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q on field '%s': %v", e.Regex, e.Field, e.Err)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *InvalidPatternError) ToErrorDetail() *entities.ErrorDetail {
	return configDetail(e, e.Field)
}
