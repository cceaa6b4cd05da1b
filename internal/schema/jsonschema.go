package schema

import (
	"encoding/json"
	"fmt"
)

// JSONSchema returns a JSON Schema document for the record, used both as the
// model's response_format constraint and for local validation of its output.
// No field is required and every type allows null: absence of information in
// the source document must validate, never fail.
func (r *Record) JSONSchema() map[string]any {
	props := make(map[string]any, len(r.Fields))
	for _, f := range r.Fields {
		props[f.Name] = f.jsonSchema()
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{},
	}
}

// JSONSchemaBytes returns the serialized JSON Schema for the record.
func (r *Record) JSONSchemaBytes() (json.RawMessage, error) {
	b, err := json.Marshal(r.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize schema for %s: %w", r.Name, err)
	}
	return b, nil
}

func (f Field) jsonSchema() map[string]any {
	var s map[string]any
	switch {
	case f.Nested != nil && f.Repeated:
		s = map[string]any{
			"type":  []string{"array", "null"},
			"items": f.Nested.JSONSchema(),
		}
	case f.Nested != nil:
		s = f.Nested.JSONSchema()
		s["type"] = []string{"object", "null"}
	default:
		switch f.Scalar {
		case KindInt:
			s = map[string]any{"type": []string{"integer", "null"}}
		case KindFloat:
			s = map[string]any{"type": []string{"number", "null"}}
		case KindList:
			s = map[string]any{"type": []string{"array", "null"}}
		default:
			s = map[string]any{"type": []string{"string", "null"}}
		}
	}
	s["description"] = f.Description
	return s
}
