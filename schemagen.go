// Package schemagen generates draft-07 JSON Schema documents from type
// descriptors and Go types, and checks field values against the patterns and
// formats those types declare.
//
//	doc, err := schemagen.Reflect(Config{}, schemagen.WithSettings(settings))
//	text, err := schemagen.EncodeToSchema(descriptor)
package schemagen

import (
	"log/slog"

	"github.com/reglet-dev/schemagen/application/config"
	"github.com/reglet-dev/schemagen/application/schema"
	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/ports"
	"github.com/reglet-dev/schemagen/infrastructure/encoding"
	"github.com/reglet-dev/schemagen/infrastructure/reflection"
)

// Version of schemagen.
const Version = "0.1.0-alpha"

// Option configures the package level functions.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	settings  *config.Settings
	provider  ports.DescriptorProvider
	generator []schema.Option
	reflector []reflection.Option
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSettings applies user facing settings. Explicit generator options
// given with WithGeneratorOptions take precedence.
func WithSettings(settings config.Settings) Option {
	return func(o *options) {
		o.settings = &settings
	}
}

// WithLogger sets the logger used by the generator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProvider resolves contextual types and open implementations of
// hand-built descriptors.
func WithProvider(provider ports.DescriptorProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithGeneratorOptions passes options to the schema generator.
func WithGeneratorOptions(opts ...schema.Option) Option {
	return func(o *options) {
		o.generator = append(o.generator, opts...)
	}
}

// WithReflectorOptions passes options to the Go type reflector.
func WithReflectorOptions(opts ...reflection.Option) Option {
	return func(o *options) {
		o.reflector = append(o.reflector, opts...)
	}
}

func (o *options) newGenerator(provider ports.DescriptorProvider) *schema.Generator {
	var opts []schema.Option
	if provider != nil {
		opts = append(opts, schema.WithProvider(provider))
	}
	if o.settings != nil {
		opts = append(opts, o.settings.GeneratorOptions(o.logger)...)
	} else if o.logger != nil {
		opts = append(opts, schema.WithLogger(o.logger))
	}
	return schema.NewGenerator(append(opts, o.generator...)...)
}

func (o *options) indent() int {
	if o.settings != nil {
		return o.settings.Indent
	}
	return encoding.DefaultIndent
}

// Generate builds the schema document of root.
func Generate(root ports.TypeDescriptor, opts ...Option) (*entities.Fragment, error) {
	o := newOptions(opts)
	return o.newGenerator(o.provider).Generate(root)
}

// EncodeToSchema builds the schema document of root and renders it as
// indented JSON.
func EncodeToSchema(root ports.TypeDescriptor, opts ...Option) (string, error) {
	o := newOptions(opts)
	doc, err := o.newGenerator(o.provider).Generate(root)
	if err != nil {
		return "", err
	}
	b, err := encoding.NewJSONEncoder(o.indent()).Encode(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Reflect builds the schema document of the Go type of v.
func Reflect(v any, opts ...Option) (*entities.Fragment, error) {
	o := newOptions(opts)
	r, err := reflection.NewReflector(o.reflector...)
	if err != nil {
		return nil, err
	}
	root, err := r.Reflect(v)
	if err != nil {
		return nil, err
	}
	return o.newGenerator(r.Provider()).Generate(root)
}

// NewDocumentEncoder returns the encoder for the output format of settings.
func NewDocumentEncoder(settings config.Settings) ports.DocumentEncoder {
	if settings.Output == config.OutputYAML {
		return encoding.NewYAMLEncoder(settings.Indent)
	}
	return encoding.NewJSONEncoder(settings.Indent)
}
