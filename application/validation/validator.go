// Package validation checks serialized field values against the pattern or
// format declared for the field.
package validation

import (
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/reglet-dev/schemagen/application/schema"
	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/errors"
	"github.com/reglet-dev/schemagen/domain/ports"
)

const defaultMatchTimeout = time.Second

// FormatValidator implements ports.FieldValidator. Compiled expressions are
// cached, so one validator can serve many goroutines.
type FormatValidator struct {
	encoder      ports.ValueEncoder
	provider     ports.DescriptorProvider
	logger       *slog.Logger
	compiled     sync.Map // regex source -> *regexp2.Regexp
	matchTimeout time.Duration
}

var _ ports.FieldValidator = (*FormatValidator)(nil)

// Option configures a FormatValidator.
type Option func(*FormatValidator)

// WithProvider resolves contextual field types through provider.
func WithProvider(provider ports.DescriptorProvider) Option {
	return func(v *FormatValidator) {
		v.provider = provider
	}
}

// WithMatchTimeout bounds the time spent matching one value.
func WithMatchTimeout(timeout time.Duration) Option {
	return func(v *FormatValidator) {
		if timeout > 0 {
			v.matchTimeout = timeout
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(v *FormatValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewFormatValidator creates a validator that renders values with encoder.
func NewFormatValidator(encoder ports.ValueEncoder, opts ...Option) *FormatValidator {
	v := &FormatValidator{
		encoder:      encoder,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		matchTimeout: defaultMatchTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks one field of descriptor. Unknown fields, fields without a
// pattern or checked format, and absent values pass.
func (v *FormatValidator) Validate(descriptor ports.TypeDescriptor, field string, value any) error {
	index := ports.ElementIndex(descriptor, field)
	if index < 0 {
		return nil
	}

	resolved, err := schema.ResolveType(v.provider, descriptor.ElementDescriptor(index), descriptor.ElementAnnotations(index))
	if err != nil {
		return err
	}
	source, ok := resolved.Annotations().ValidationRegex()
	if !ok || value == nil {
		return nil
	}

	text, present, err := v.canonical(value)
	if err != nil {
		return fmt.Errorf("failed to encode field '%s': %w", field, err)
	}
	if !present {
		return nil
	}

	re, err := v.compile(field, source)
	if err != nil {
		return err
	}
	matched, err := re.MatchString(text)
	if err != nil {
		return fmt.Errorf("failed to match field '%s': %w", field, err)
	}
	if !matched {
		v.logger.Debug("field does not match", "field", field, "value", text)
		return &errors.FormatValidationError{Field: field, Value: text, Regex: source}
	}
	return nil
}

// ValidateAll validates every declared field of descriptor present in values.
// It does not descend into nested records.
func (v *FormatValidator) ValidateAll(descriptor ports.TypeDescriptor, values map[string]any) *entities.ValidationResult {
	result := &entities.ValidationResult{Valid: true}

	for _, field := range ports.ElementNames(descriptor) {
		value, ok := values[field]
		if !ok {
			continue
		}
		err := v.Validate(descriptor, field, value)
		if err == nil {
			continue
		}

		var formatErr *errors.FormatValidationError
		if stdErrors.As(err, &formatErr) {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   formatErr.Field,
				Value:   formatErr.Value,
				Regex:   formatErr.Regex,
				Message: formatErr.Error(),
			})
		} else {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   field,
				Message: err.Error(),
			})
		}
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}
	return result
}

// canonical renders value as it serializes, without surrounding quotes.
// A value that serializes as null is absent.
func (v *FormatValidator) canonical(value any) (string, bool, error) {
	b, err := v.encoder.Encode(value)
	if err != nil {
		return "", false, err
	}
	text := string(b)
	if text == "null" {
		return "", false, nil
	}
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = text[1 : len(text)-1]
	}
	return text, true, nil
}

// compile returns the cached expression for source, anchored to match the
// whole text.
func (v *FormatValidator) compile(field, source string) (*regexp2.Regexp, error) {
	if cached, ok := v.compiled.Load(source); ok {
		return cached.(*regexp2.Regexp), nil
	}

	re, err := regexp2.Compile(`\A(?:`+source+`)\z`, regexp2.ECMAScript)
	if err != nil {
		return nil, &errors.InvalidPatternError{Field: field, Regex: source, Err: err}
	}
	re.MatchTimeout = v.matchTimeout

	actual, _ := v.compiled.LoadOrStore(source, re)
	return actual.(*regexp2.Regexp), nil
}
