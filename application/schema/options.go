package schema

import (
	"log/slog"

	"github.com/reglet-dev/schemagen/domain/ports"
)

// Option configures a Generator.
type Option func(*Generator)

// WithProvider sets the provider used for contextual types and open
// polymorphic implementations.
func WithProvider(provider ports.DescriptorProvider) Option {
	return func(g *Generator) {
		g.provider = provider
	}
}

// WithAutoDefinitions emits every schema as a named definition instead of
// inlining it. Off by default.
func WithAutoDefinitions(enabled bool) Option {
	return func(g *Generator) {
		g.autoDefinitions = enabled
	}
}

// WithDiscriminator sets the property that carries the variant tag of tagged
// unions. Defaults to "type".
func WithDiscriminator(key string) Option {
	return func(g *Generator) {
		if key != "" {
			g.discriminator = key
		}
	}
}

// WithExposeDiscriminator makes a root record declare the discriminator
// property with its serial name as a constant.
func WithExposeDiscriminator(enabled bool) Option {
	return func(g *Generator) {
		g.exposeDiscriminator = enabled
	}
}

// WithClosedObjects adds "additionalProperties": false to every record.
func WithClosedObjects(enabled bool) Option {
	return func(g *Generator) {
		g.closedObjects = enabled
	}
}

// WithMaxDepth bounds the nesting depth of the descriptor tree.
func WithMaxDepth(depth int) Option {
	return func(g *Generator) {
		if depth > 0 {
			g.maxDepth = depth
		}
	}
}

// WithBuiltinPrefixes sets the serial name prefixes of built-in types. Root
// types in these namespaces get no title.
func WithBuiltinPrefixes(prefixes ...string) Option {
	return func(g *Generator) {
		g.builtinPrefixes = append([]string(nil), prefixes...)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}
