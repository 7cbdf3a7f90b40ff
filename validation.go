package schemagen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/schemagen/application/config"
	"github.com/reglet-dev/schemagen/application/validation"
	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/infrastructure/encoding"
	"github.com/reglet-dev/schemagen/infrastructure/reflection"
)

// Config is a decoded configuration map.
type Config = config.Config

// ValidateConfig validates a Config map against a struct with validation tags.
// It first marshals the map to JSON, then unmarshals it into the target struct,
// and finally runs the validator on the struct.
func ValidateConfig(cfg Config, targetStruct interface{}) error {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config map: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, targetStruct); err != nil {
		return fmt.Errorf("failed to unmarshal config into struct: %w", err)
	}

	return config.ValidateStruct(targetStruct)
}

// ValidateFields checks the top-level fields of the struct v against the
// patterns and formats declared by its type. Nested records are not visited.
func ValidateFields(v any, opts ...Option) (*entities.ValidationResult, error) {
	o := newOptions(opts)
	r, err := reflection.NewReflector(o.reflector...)
	if err != nil {
		return nil, err
	}
	d, err := r.Reflect(v)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("value of type %T is not a JSON object: %w", v, err)
	}

	validatorOpts := []validation.Option{validation.WithProvider(r.Provider())}
	if o.logger != nil {
		validatorOpts = append(validatorOpts, validation.WithLogger(o.logger))
	}
	validator := validation.NewFormatValidator(encoding.NewValueEncoder(), validatorOpts...)
	return validator.ValidateAll(d, values), nil
}
