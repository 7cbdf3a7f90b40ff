// Package encoding renders schema documents and field values.
package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/schemagen/domain/entities"
	"github.com/reglet-dev/schemagen/domain/ports"
)

// DefaultIndent is the indentation of pretty printed documents.
const DefaultIndent = 2

// JSONEncoder renders documents as JSON. Keys keep their emission order and
// HTML characters are written as is.
type JSONEncoder struct {
	indent int
}

var (
	_ ports.DocumentEncoder = (*JSONEncoder)(nil)
	_ ports.DocumentEncoder = (*YAMLEncoder)(nil)
	_ ports.ValueEncoder    = (*ValueEncoder)(nil)
)

// NewJSONEncoder returns an encoder indenting nested values by indent spaces.
// An indent of zero produces compact output.
func NewJSONEncoder(indent int) *JSONEncoder {
	if indent < 0 {
		indent = 0
	}
	return &JSONEncoder{indent: indent}
}

// Encode implements ports.DocumentEncoder.
func (e *JSONEncoder) Encode(document *entities.Fragment) ([]byte, error) {
	return marshalJSON(document, e.indent)
}

// YAMLEncoder renders documents as YAML with keys in emission order.
type YAMLEncoder struct {
	indent int
}

// NewYAMLEncoder returns a YAML encoder. Indents below two use the default.
func NewYAMLEncoder(indent int) *YAMLEncoder {
	if indent < 2 {
		indent = DefaultIndent
	}
	return &YAMLEncoder{indent: indent}
}

// Encode implements ports.DocumentEncoder.
func (e *YAMLEncoder) Encode(document *entities.Fragment) ([]byte, error) {
	node, err := toNode(document)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(e.indent)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func toNode(v any) (*yaml.Node, error) {
	switch value := v.(type) {
	case *entities.Fragment:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var firstErr error
		value.Each(func(key string, child any) {
			if firstErr != nil {
				return
			}
			childNode, err := toNode(child)
			if err != nil {
				firstErr = fmt.Errorf("key %q: %w", key, err)
				return
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				childNode)
		})
		return node, firstErr

	case []*entities.Fragment:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range value {
			itemNode, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, itemNode)
		}
		return node, nil

	default:
		node := &yaml.Node{}
		if err := node.Encode(value); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// ValueEncoder renders field values the way they serialize, as compact JSON
// without HTML escaping.
type ValueEncoder struct{}

// NewValueEncoder creates a ValueEncoder.
func NewValueEncoder() *ValueEncoder {
	return &ValueEncoder{}
}

// Encode implements ports.ValueEncoder.
func (ValueEncoder) Encode(value any) ([]byte, error) {
	return marshalJSON(value, 0)
}

func marshalJSON(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", fmt.Sprintf("%*s", indent, ""))
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
