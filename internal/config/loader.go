package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads a run configuration from a file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// Fields the file does not set keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig validates data against the config schema and decodes it over
// Default(). YAML is assumed when path has no known extension.
func ParseConfig(data []byte, path string) (*Config, error) {
	if err := ValidateDocument(data, path); err != nil {
		return nil, err
	}

	cfg := Default()
	if isJSON(path) {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return cfg, nil
}

// ValidateDocument checks the raw document against the embedded schema.
// YAML is converted to JSON first so both formats see the same rules.
func ValidateDocument(data []byte, path string) error {
	doc := data
	if !isJSON(path) {
		var generic interface{}
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
		if generic == nil {
			// Empty file: everything defaults.
			return nil
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to convert YAML config: %w", err)
		}
		doc = converted
	}

	if errs := configSchema.ValidateJSON(doc); len(errs) > 0 {
		return fmt.Errorf("config %s does not match schema: %w", filepath.Base(path), errs)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}
