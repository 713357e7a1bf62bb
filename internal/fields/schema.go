package fields

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dianabombi/student-advisor-sub000/constants"
)

// BuildResultSchema returns a JSON-Schema (draft 2020-12 subset) describing
// the serialized extraction result, as a generic map. Used locally to check
// payloads before they are persisted on a job record.
func BuildResultSchema() map[string]any {
	matchProp := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"value":         map[string]any{"type": "string", "minLength": 1},
			"numeric_value": map[string]any{"type": "number"},
			"context":       map[string]any{"type": "string"},
			"offset":        map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []string{"value", "context", "offset"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"fields": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":  "array",
					"items": matchProp,
				},
			},
			"metadata": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"document_type": map[string]any{
						"type": "string",
						"enum": constants.AsStringSlice(),
					},
					"extracted_at": map[string]any{"type": "string", "format": "date-time"},
					"field_count":  map[string]any{"type": "integer", "minimum": 0},
				},
				"required": []string{"document_type", "extracted_at", "field_count"},
			},
		},
		"required": []string{"fields", "metadata"},
	}
}

// ValidateJSON validates "data" against "schemaMap".
func ValidateJSON(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// MarshalValidated serializes an extraction result and checks it against
// the schema in one step.
func MarshalValidated(res Result) ([]byte, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction result: %w", err)
	}
	if err := ValidateJSON(BuildResultSchema(), data); err != nil {
		return nil, err
	}
	return data, nil
}
