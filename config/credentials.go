package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrCredentialNotFound is returned when no credential exists for a
// (family, provider) pair.
var ErrCredentialNotFound = errors.New("credential not found")

// Credentials maps capability family → provider name → API key.
//
// File format:
//
//	credentials:
//	  stt:
//	    groq: gsk_...
//	  llm:
//	    groq: gsk_...
//	    openai: sk-...
//	  tts:
//	    elevenlabs: xi-...
//
// Environment variables of the form CALLKIT_<FAMILY>_<PROVIDER>_API_KEY
// override file entries, so deployments can keep secrets out of files.
type Credentials struct {
	providers map[string]map[string]string
}

type credentialsFile struct {
	Credentials map[string]map[string]string `yaml:"credentials"`
}

// LoadCredentials reads a YAML credentials file and applies environment
// overrides.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return ParseCredentials(data)
}

// ParseCredentials decodes YAML credential data and applies environment
// overrides.
func ParseCredentials(data []byte) (*Credentials, error) {
	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	c := &Credentials{providers: file.Credentials}
	if c.providers == nil {
		c.providers = make(map[string]map[string]string)
	}
	return c, nil
}

// EmptyCredentials returns a credential set with no file entries; lookups
// still honor environment variables.
func EmptyCredentials() *Credentials {
	return &Credentials{providers: make(map[string]map[string]string)}
}

// Lookup returns the API key for a (family, provider) pair. Environment
// variables take precedence over file entries.
func (c *Credentials) Lookup(family, provider string) (string, error) {
	envKey := fmt.Sprintf("CALLKIT_%s_%s_API_KEY",
		strings.ToUpper(family), strings.ToUpper(provider))
	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}

	if byProvider, ok := c.providers[family]; ok {
		if key, ok := byProvider[provider]; ok && key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrCredentialNotFound, family, provider)
}

// Set stores a credential, replacing any file entry. Used by tests and by
// programmatic configuration.
func (c *Credentials) Set(family, provider, key string) {
	if c.providers[family] == nil {
		c.providers[family] = make(map[string]string)
	}
	c.providers[family][provider] = key
}
