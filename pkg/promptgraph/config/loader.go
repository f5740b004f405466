package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/template"
)

// FromFile loads configuration from a file, detecting the format by
// extension (.yaml, .yml, .json). String values have ${VAR} placeholders
// expanded from the environment.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML into a Config, expanding environment placeholders.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(expandEnv(m)), nil
}

// FromJSON parses JSON into a Config, expanding environment placeholders.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(expandEnv(m)), nil
}

// expandEnv substitutes ${VAR} in string values with environment values.
// Unset variables leave the placeholder intact so the failure surfaces
// where the value is used, not silently as an empty string.
func expandEnv(m map[string]any) map[string]any {
	vars := make(map[string]any)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return template.ExpandMap(m, vars)
}
