package descriptor

import (
	"fmt"
	"sort"

	"github.com/reglet-dev/schemagen/domain/ports"
)

// Provider resolves contextual types, lists open union implementations and
// keeps a catalog of named root descriptors.
type Provider struct {
	contextual      map[string]ports.TypeDescriptor
	implementations map[string][]ports.TypeDescriptor
	roots           map[string]ports.TypeDescriptor
}

var (
	_ ports.DescriptorProvider = (*Provider)(nil)
	_ ports.DescriptorCatalog  = (*Provider)(nil)
)

// ProviderOption configures a Provider under construction.
type ProviderOption func(*providerBuilder)

type providerBuilder struct {
	provider *Provider
	errors   []error
}

// NewProvider creates a Provider with the given options.
// Returns an error if a name is registered twice.
//
//	provider, err := descriptor.NewProvider(
//	    descriptor.WithContextual("Decimal", descriptor.String()),
//	    descriptor.WithImplementation("Shape", circle),
//	)
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	b := &providerBuilder{provider: &Provider{
		contextual:      make(map[string]ports.TypeDescriptor),
		implementations: make(map[string][]ports.TypeDescriptor),
		roots:           make(map[string]ports.TypeDescriptor),
	}}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}
	return b.provider, nil
}

// WithContextual registers the concrete descriptor of a contextual type.
func WithContextual(serialName string, concrete ports.TypeDescriptor) ProviderOption {
	return func(b *providerBuilder) {
		if err := b.provider.RegisterContextual(serialName, concrete); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithImplementation registers an open implementation of a union.
func WithImplementation(unionSerialName string, implementation ports.TypeDescriptor) ProviderOption {
	return func(b *providerBuilder) {
		if err := b.provider.RegisterImplementation(unionSerialName, implementation); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithRoot adds a named root descriptor to the catalog.
func WithRoot(name string, root ports.TypeDescriptor) ProviderOption {
	return func(b *providerBuilder) {
		if err := b.provider.Register(name, root); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// RegisterContextual registers the concrete descriptor of a contextual type.
func (p *Provider) RegisterContextual(serialName string, concrete ports.TypeDescriptor) error {
	if serialName == "" {
		return fmt.Errorf("contextual serial name cannot be empty")
	}
	if concrete == nil {
		return fmt.Errorf("contextual type %q needs a concrete descriptor", serialName)
	}
	if _, exists := p.contextual[serialName]; exists {
		return fmt.Errorf("duplicate contextual type: %q", serialName)
	}
	p.contextual[serialName] = concrete
	return nil
}

// RegisterImplementation registers an open implementation of a union.
func (p *Provider) RegisterImplementation(unionSerialName string, implementation ports.TypeDescriptor) error {
	if unionSerialName == "" {
		return fmt.Errorf("union serial name cannot be empty")
	}
	for _, existing := range p.implementations[unionSerialName] {
		if existing.SerialName() == implementation.SerialName() {
			return fmt.Errorf("duplicate implementation %q of %q", implementation.SerialName(), unionSerialName)
		}
	}
	p.implementations[unionSerialName] = append(p.implementations[unionSerialName], implementation)
	return nil
}

// Contextual implements ports.DescriptorProvider.
func (p *Provider) Contextual(serialName string) (ports.TypeDescriptor, bool) {
	d, ok := p.contextual[serialName]
	return d, ok
}

// Implementations implements ports.DescriptorProvider.
func (p *Provider) Implementations(unionSerialName string) []ports.TypeDescriptor {
	impls := p.implementations[unionSerialName]
	out := make([]ports.TypeDescriptor, len(impls))
	copy(out, impls)
	return out
}

// Register implements ports.DescriptorCatalog.
func (p *Provider) Register(name string, root ports.TypeDescriptor) error {
	if name == "" {
		return fmt.Errorf("root name cannot be empty")
	}
	if _, exists := p.roots[name]; exists {
		return fmt.Errorf("duplicate root name: %q", name)
	}
	p.roots[name] = root
	return nil
}

// Lookup implements ports.DescriptorCatalog.
func (p *Provider) Lookup(name string) (ports.TypeDescriptor, bool) {
	d, ok := p.roots[name]
	return d, ok
}

// List implements ports.DescriptorCatalog.
func (p *Provider) List() []string {
	names := make([]string, 0, len(p.roots))
	for name := range p.roots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
