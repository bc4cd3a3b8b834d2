package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roiLikeSchema = JSONSchema{
	Type:     "object",
	Required: []string{"yieldPerAcre", "tier"},
	Properties: map[string]Property{
		"yieldPerAcre": {Type: "number", Minimum: Float64Ptr(0)},
		"tier":         {Type: "string", Enum: []string{"low", "medium", "high", "custom"}},
		"features": {
			Type:     "array",
			Items:    &Property{Type: "number"},
			MinItems: IntPtr(4),
			MaxItems: IntPtr(4),
		},
		"sessionId": {Type: "string", MinLength: IntPtr(1)},
	},
	AdditionalProperties: false,
}

func codes(r *ValidationResult) []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Code)
	}
	return out
}

func TestValidator_ValidateJSON(t *testing.T) {
	v, err := Compile(roiLikeSchema)
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantCode  string
	}{
		{"valid", `{"yieldPerAcre": 20, "tier": "low"}`, true, ""},
		{"missing required", `{"tier": "low"}`, false, "REQUIRED_FIELD_MISSING"},
		{"negative yield", `{"yieldPerAcre": -1, "tier": "low"}`, false, "MINIMUM_VIOLATION"},
		{"bad enum", `{"yieldPerAcre": 1, "tier": "premium"}`, false, "INVALID_ENUM_VALUE"},
		{"extra field", `{"yieldPerAcre": 1, "tier": "low", "foo": 1}`, false, "EXTRA_FIELD"},
		{"wrong type", `{"yieldPerAcre": "20", "tier": "low"}`, false, "INVALID_TYPE"},
		{"too few features", `{"yieldPerAcre": 1, "tier": "low", "features": [1,2,3]}`, false, "MIN_ITEMS_VIOLATION"},
		{"empty session", `{"yieldPerAcre": 1, "tier": "low", "sessionId": ""}`, false, "MIN_LENGTH_VIOLATION"},
		{"not json", `{`, false, "INVALID_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateJSON([]byte(tt.doc))
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantCode != "" {
				assert.Contains(t, codes(res), tt.wantCode)
			}
		})
	}
}

func TestValidator_RequiredFieldName(t *testing.T) {
	res := ValidateInput(map[string]interface{}{"tier": "low"}, roiLikeSchema)
	require.False(t, res.Valid)
	assert.Equal(t, "yieldPerAcre", res.Errors[0].Field)
	assert.Contains(t, res.Summary(), "yieldPerAcre")
}

func TestCompileRaw_RejectsBrokenSchema(t *testing.T) {
	_, err := CompileRaw([]byte(`{"type": 12}`))
	assert.Error(t, err)
}
