package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadAgentConfig reads one agent-config document. JSON documents are
// checked against the schema before decoding; YAML documents go straight to
// the struct. Either way the result is normalized and validated.
func LoadAgentConfig(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent config: %w", err)
	}

	var cfg AgentConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := ValidateAgentDocument(data); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to parse agent config: %w", filepath.Base(path), err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to parse agent config: %w", filepath.Base(path), err)
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// LoadAgentDir loads every .yaml/.yml/.json document in dir, one tenant per
// file. A duplicate tenant_id across files is an error.
func LoadAgentDir(dir string) ([]*AgentConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents directory: %w", err)
	}

	seen := make(map[string]string)
	var configs []*AgentConfig
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}

		cfg, err := LoadAgentConfig(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[cfg.TenantID]; ok {
			return nil, fmt.Errorf("tenant %q defined in both %s and %s",
				cfg.TenantID, prev, entry.Name())
		}
		seen[cfg.TenantID] = entry.Name()
		configs = append(configs, cfg)
	}
	return configs, nil
}
