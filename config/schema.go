package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaViolation is returned when an agent-config document fails
// structural validation.
var ErrSchemaViolation = errors.New("agent config schema violation")

// agentConfigSchema validates agent-config documents structurally before
// they are decoded. Semantic checks (legal provider names, numeric ranges)
// happen afterwards in AgentConfig.Validate; the schema catches shape
// problems like wrong types or missing required fields.
const agentConfigSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tenant_id", "system_prompt"],
  "properties": {
    "tenant_id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "system_prompt": {"type": "string", "minLength": 1},
    "greeting": {"type": "string"},
    "stt": {"$ref": "#/definitions/providerChoice"},
    "llm": {"$ref": "#/definitions/providerChoice"},
    "tts": {"$ref": "#/definitions/providerChoice"},
    "embeddings": {"$ref": "#/definitions/providerChoice"},
    "voice": {"type": "string"},
    "temperature": {"type": "number", "minimum": 0, "maximum": 2},
    "max_tokens": {"type": "integer", "minimum": 1},
    "top_p": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
    "history_cap": {"type": "integer", "minimum": 1},
    "retrieval_enabled": {"type": "boolean"},
    "retrieval_top_k": {"type": "integer", "minimum": 1},
    "enable_interruption": {"type": "boolean"},
    "silence_timeout": {"type": "number", "minimum": 0.5, "maximum": 10}
  },
  "additionalProperties": false,
  "definitions": {
    "providerChoice": {
      "type": "object",
      "required": ["provider"],
      "properties": {
        "provider": {"type": "string", "minLength": 1},
        "model": {"type": "string"},
        "fallback": {"type": "string"}
      },
      "additionalProperties": false
    }
  }
}`

var compiledSchema = gojsonschema.NewStringLoader(agentConfigSchema)

// ValidateAgentDocument checks a raw agent-config JSON document against the
// schema. Returns ErrSchemaViolation (with all violations listed) when the
// document is structurally invalid.
func ValidateAgentDocument(document []byte) error {
	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(violations, "; "))
}
