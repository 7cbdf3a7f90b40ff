// Package ports defines the interfaces schema synthesis depends on.
// Descriptor sources, parsers and encoders live in infrastructure adapters
// that implement these interfaces.
package ports
