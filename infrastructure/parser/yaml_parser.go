// Package parser reads generator settings and type catalogs from YAML.
package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/schemagen/domain/ports"
)

// YAMLSettingsParser implements ports.SettingsParser for YAML.
type YAMLSettingsParser struct{}

// NewYAMLSettingsParser creates a new YAMLSettingsParser.
func NewYAMLSettingsParser() ports.SettingsParser {
	return &YAMLSettingsParser{}
}

// Parse unmarshals YAML bytes into a key-value map. An empty document yields
// an empty map.
func (p *YAMLSettingsParser) Parse(data []byte) (map[string]any, error) {
	settings := make(map[string]any)
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}
