package ports

// DescriptorCatalog holds named root descriptors that schemas can be
// generated for.
type DescriptorCatalog interface {
	// Register adds a root descriptor under name.
	Register(name string, descriptor TypeDescriptor) error

	// Lookup retrieves a root descriptor by name.
	Lookup(name string) (TypeDescriptor, bool)

	// List returns all registered names, sorted.
	List() []string
}
