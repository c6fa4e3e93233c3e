package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToJSON converts a graph to an indented JSON document.
func (g *Graph) ToJSON() (string, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal graph to JSON: %w", err)
	}
	return string(data), nil
}

// ToYAML converts a graph to a YAML document.
func (g *Graph) ToYAML() (string, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("failed to marshal graph to YAML: %w", err)
	}
	return string(data), nil
}

// FromJSON creates a graph from a JSON document and validates it.
func FromJSON(jsonStr string) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal([]byte(jsonStr), &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph from JSON: %w", err)
	}
	if err := Validate(&g); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &g, nil
}

// FromYAML creates a graph from a YAML document and validates it.
func FromYAML(yamlStr string) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal([]byte(yamlStr), &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph from YAML: %w", err)
	}
	if err := Validate(&g); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &g, nil
}

// LoadFromFile loads a graph from a JSON or YAML file, selected by
// extension.
func LoadFromFile(filename string) (*Graph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FromYAML(string(data))
	default:
		return FromJSON(string(data))
	}
}

// SaveToFile saves a graph to a JSON or YAML file, selected by extension.
func (g *Graph) SaveToFile(filename string) error {
	var (
		doc string
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		doc, err = g.ToYAML()
	default:
		doc, err = g.ToJSON()
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
