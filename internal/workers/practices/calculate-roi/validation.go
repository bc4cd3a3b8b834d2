package calculateroi

import "khetmitra-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	nonNegative := func(desc string) validation.Property {
		return validation.Property{Type: "number", Description: desc, Minimum: validation.Float64Ptr(0)}
	}
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"yieldPerAcre": nonNegative("Yield per acre per harvest, in quintals"),
			"pricePerUnit": nonNegative("Market price per quintal in rupees"),
			"currentCost":  nonNegative("Current cultivation cost in rupees"),
			"investment":   nonNegative("Upfront investment in rupees"),
			"expectedIncreasePercent": {
				Type:    "number",
				Minimum: validation.Float64Ptr(0),
				Maximum: validation.Float64Ptr(100),
			},
			"timelineMonths": {
				Type:    "integer",
				Minimum: validation.Float64Ptr(1),
			},
		},
		AdditionalProperties: true,
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())
