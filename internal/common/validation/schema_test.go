package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"team_id":        NullableInteger(),
		"competition_id": NullableInteger(),
	},
	"required": []interface{}{"team_id", "competition_id"},
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "both ids", doc: `{"team_id": 61, "competition_id": 2021}`},
		{name: "null ids", doc: `{"team_id": null, "competition_id": null}`},
		{name: "string id", doc: `{"team_id": "61", "competition_id": null}`, wantErr: true},
		{name: "missing key", doc: `{"team_id": 61}`, wantErr: true},
		{name: "fractional id", doc: `{"team_id": 61.5, "competition_id": null}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(idSchema, []byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrSchemaViolation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NotJSON(t *testing.T) {
	_, err := Validate(idSchema, []byte("the team is Chelsea"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSchemaViolation))
}

func TestValidationResult_Summary(t *testing.T) {
	result, err := Validate(idSchema, []byte(`{"team_id": "x"}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Summary(), "team_id")
}
