package recommendpractices

import "khetmitra-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"budgetTier"},
		Properties: map[string]validation.Property{
			"budgetTier": {
				Type:        "string",
				Description: "Budget bracket chosen by the farmer",
				Enum:        []string{"low", "medium", "high", "custom"},
			},
			"customAmount": {
				Type:        "number",
				Description: "Budget in rupees, only for the custom tier",
				Minimum:     validation.Float64Ptr(0),
			},
		},
		AdditionalProperties: true,
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())
