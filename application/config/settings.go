package config

import (
	stdErrors "errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/schemagen/application/schema"
	"github.com/reglet-dev/schemagen/domain/errors"
)

// Output formats of generated documents.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Configuration keys read by FromConfig.
const (
	KeyDiscriminator       = "discriminator"
	KeyAutoDefinitions     = "auto_definitions"
	KeyExposeDiscriminator = "expose_discriminator"
	KeyClosedObjects       = "closed_objects"
	KeyMaxDepth            = "max_depth"
	KeyBuiltinPrefixes     = "builtin_prefixes"
	KeyOutput              = "output"
	KeyIndent              = "indent"
)

// validate is a package-level singleton: validator.Validate caches struct
// metadata between calls.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"yaml", "json"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	return v
}

// ValidateStruct runs the validation tags of target. Failures are returned as
// *errors.ConfigError naming the first failing field.
func ValidateStruct(target any) error {
	err := validate.Struct(target)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &errors.ConfigError{Field: fieldErrs[0].Field(), Err: err}
	}
	return &errors.ConfigError{Err: err}
}

// Settings are the user facing generator settings.
type Settings struct {
	Discriminator       string   `json:"discriminator" yaml:"discriminator" validate:"required,printascii,max=64"`
	Output              string   `json:"output" yaml:"output" validate:"oneof=json yaml"`
	BuiltinPrefixes     []string `json:"builtin_prefixes" yaml:"builtin_prefixes" validate:"dive,required"`
	MaxDepth            int      `json:"max_depth" yaml:"max_depth" validate:"min=1,max=4096"`
	Indent              int      `json:"indent" yaml:"indent" validate:"min=0,max=8"`
	AutoDefinitions     bool     `json:"auto_definitions" yaml:"auto_definitions"`
	ExposeDiscriminator bool     `json:"expose_discriminator" yaml:"expose_discriminator"`
	ClosedObjects       bool     `json:"closed_objects" yaml:"closed_objects"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Discriminator:   "type",
		Output:          OutputJSON,
		BuiltinPrefixes: []string{"builtin."},
		MaxDepth:        256,
		Indent:          2,
	}
}

// FromConfig overlays config on the default settings and validates the result.
func FromConfig(config Config) (Settings, error) {
	s := DefaultSettings()
	readers := []error{
		read(config, KeyDiscriminator, "a string", GetString, &s.Discriminator),
		read(config, KeyAutoDefinitions, "a boolean", GetBool, &s.AutoDefinitions),
		read(config, KeyExposeDiscriminator, "a boolean", GetBool, &s.ExposeDiscriminator),
		read(config, KeyClosedObjects, "a boolean", GetBool, &s.ClosedObjects),
		read(config, KeyMaxDepth, "an integer", GetInt, &s.MaxDepth),
		read(config, KeyBuiltinPrefixes, "a list of strings", GetStringSlice, &s.BuiltinPrefixes),
		read(config, KeyOutput, "a string", GetString, &s.Output),
		read(config, KeyIndent, "an integer", GetInt, &s.Indent),
	}
	if err := stdErrors.Join(readers...); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings against their validation tags.
func (s Settings) Validate() error {
	return ValidateStruct(s)
}

// GeneratorOptions converts the settings into generator options.
func (s Settings) GeneratorOptions(logger *slog.Logger) []schema.Option {
	return []schema.Option{
		schema.WithDiscriminator(s.Discriminator),
		schema.WithAutoDefinitions(s.AutoDefinitions),
		schema.WithExposeDiscriminator(s.ExposeDiscriminator),
		schema.WithClosedObjects(s.ClosedObjects),
		schema.WithMaxDepth(s.MaxDepth),
		schema.WithBuiltinPrefixes(s.BuiltinPrefixes...),
		schema.WithLogger(logger),
	}
}
