package searchlistings

import "khetmitra-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"query":    {Type: "string", MaxLength: validation.IntPtr(200)},
			"location": {Type: "string", MaxLength: validation.IntPtr(100)},
			"from":     {Type: "integer", Minimum: validation.Float64Ptr(0)},
			"size": {
				Type:    "integer",
				Minimum: validation.Float64Ptr(1),
				Maximum: validation.Float64Ptr(100),
			},
		},
		AdditionalProperties: true,
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())
