package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr string
	}{
		{"simple", "dublin-core-basic", ""},
		{"dotted", "iso-639-1.v2", ""},
		{"underscore", "record_schema", ""},
		{"empty", "", "cannot be empty"},
		{"blank", "   ", "cannot be empty"},
		{"slash", "a/b", "invalid character /"},
		{"space", "a b", "invalid character"},
		{"too long", strings.Repeat("a", MaxIDLength+1), "exceeds 128 characters"},
		{"max length", strings.Repeat("a", MaxIDLength), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("id", tt.id)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var ve ValidationError
			assert.True(t, errors.As(err, &ve))
			assert.Equal(t, "id", ve.Field)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, ValidateTarget("format", "json"))
	assert.EqualError(t, ValidateTarget("format", ""), "validation error for field 'format': query parameter is required")
}
