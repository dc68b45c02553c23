package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the callkit-server process.
type ServerConfig struct {
	// ListenAddr is the address for the websocket media endpoint.
	ListenAddr string `yaml:"listen_addr"`

	// MetricsAddr is the address for the prometheus exporter; empty
	// disables the exporter.
	MetricsAddr string `yaml:"metrics_addr"`

	// CredentialsFile is the path to the provider-credentials YAML file.
	CredentialsFile string `yaml:"credentials_file"`

	// AgentsDir holds per-tenant agent-config JSON documents, loaded at
	// startup.
	AgentsDir string `yaml:"agents_dir"`

	// KnowledgeDir holds per-tenant knowledge documents
	// (knowledge_dir/<tenant_id>/*.txt|*.md), embedded and indexed at
	// startup when an embeddings credential is available.
	KnowledgeDir string `yaml:"knowledge_dir"`

	// RedisAddr enables the Redis agent-config cache when non-empty.
	RedisAddr string `yaml:"redis_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultServerConfig returns the configuration used when no file is given.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:  ":8080",
		MetricsAddr: ":9090",
		LogLevel:    "info",
	}
}

// LoadServerConfig reads a YAML server configuration, filling omitted
// fields with defaults.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read server config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse server config: %w", err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
