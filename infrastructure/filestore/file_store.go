// Package filestore reads generator settings and type catalogs from disk and
// writes generated documents.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reglet-dev/schemagen/application/config"
	"github.com/reglet-dev/schemagen/domain/ports"
	"github.com/reglet-dev/schemagen/infrastructure/descriptor"
	"github.com/reglet-dev/schemagen/infrastructure/parser"
)

// DefaultSettingsPath is the settings file looked up in the working directory.
const DefaultSettingsPath = ".schemagen.yaml"

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	settingsParser ports.SettingsParser
	engine         ports.TemplateEngine
	vars           map[string]any
	dirPerm        os.FileMode // Permission for created directories
	filePerm       os.FileMode // Permission for written documents
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		settingsParser: parser.NewYAMLSettingsParser(),
		dirPerm:        0o755,
		filePerm:       0o644,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithFilePermissions sets the permissions of written documents.
// Default is 0o644.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the permissions of created directories.
// Default is 0o755.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// WithSettingsParser replaces the YAML settings parser.
func WithSettingsParser(p ports.SettingsParser) FileStoreOption {
	return func(c *fileStoreConfig) {
		if p != nil {
			c.settingsParser = p
		}
	}
}

// WithCatalogVars renders catalogs through engine with vars before parsing.
// Catalogs are read verbatim when no engine is set.
func WithCatalogVars(engine ports.TemplateEngine, vars map[string]any) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.engine = engine
		c.vars = vars
	}
}

// FileStore provides file-based access to settings, catalogs and documents.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// LoadSettings reads and validates the settings file at path. A missing file
// yields the default settings.
func (s *FileStore) LoadSettings(path string) (config.Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config.DefaultSettings(), nil
	}
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	values, err := s.config.settingsParser.Parse(data)
	if err != nil {
		return config.Settings{}, err
	}
	return config.FromConfig(values)
}

// LoadCatalog reads the type catalog at path.
func (s *FileStore) LoadCatalog(path string) (*descriptor.Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if s.config.engine != nil {
		if data, err = s.config.engine.Render(data, s.config.vars); err != nil {
			return nil, err
		}
	}
	return parser.NewYAMLCatalogParser().ParseProvider(data)
}

// SaveDocument writes a generated document, creating parent directories.
func (s *FileStore) SaveDocument(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
