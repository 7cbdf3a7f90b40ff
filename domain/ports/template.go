package ports

// TemplateEngine renders templated documents with variables.
type TemplateEngine interface {
	// Render processes the raw bytes with the provided variables and returns
	// them with every placeholder replaced.
	Render(raw []byte, vars map[string]any) ([]byte, error)
}
