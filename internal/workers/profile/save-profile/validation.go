package saveprofile

import "khetmitra-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId"},
		Properties: map[string]validation.Property{
			"sessionId": {Type: "string", MinLength: validation.IntPtr(1)},
			"language":  {Type: "string", MaxLength: validation.IntPtr(8)},
			"profile":   {Type: "object"},
		},
		AdditionalProperties: true,
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())
