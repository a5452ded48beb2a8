// Package validation checks structured model output against JSON schemas.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrSchemaViolation = errors.New("SCHEMA_VIOLATION")

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validate checks a raw JSON document against a schema expressed as a Go map.
// A document that is not JSON at all is reported as an error, not as an invalid result.
func Validate(schema map[string]interface{}, document []byte) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}

	return out, nil
}

// ValidateJSON is Validate collapsed into a single error.
func ValidateJSON(schema map[string]interface{}, document []byte) error {
	result, err := Validate(schema, document)
	if err != nil {
		return err
	}

	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrSchemaViolation, result.Summary())
	}

	return nil
}

// Summary joins all field errors into one line.
func (r *ValidationResult) Summary() string {
	errs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(errs, "; ")
}

// NullableInteger is the schema fragment for an id that may be absent.
func NullableInteger() map[string]interface{} {
	return map[string]interface{}{
		"type": []interface{}{"integer", "null"},
	}
}
