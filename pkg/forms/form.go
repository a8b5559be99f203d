// Package forms implements the per-kind node configuration editors. Each
// form validates a raw payload against its JSON schema and, on success,
// writes the typed config into the graph with the node marked configured.
// Schema failures carry field-level errors and leave the graph untouched.
package forms

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one schema violation, attributed to a payload field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError aggregates every field-level violation of one submission.
type SchemaError struct {
	Fields []FieldError
}

func (e *SchemaError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}

	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// validateSchema checks payload against a JSON schema expressed as a Go
// map. A nil return means the payload conforms.
func validateSchema(schema, payload map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{}
	for _, desc := range result.Errors() {
		schemaErr.Fields = append(schemaErr.Fields, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}

	return schemaErr
}

// decode round-trips a validated payload into its typed config struct.
func decode(payload map[string]any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	return nil
}

func fieldError(field, message string) error {
	return &SchemaError{Fields: []FieldError{{Field: field, Message: message}}}
}
