package recommendcrop

import "khetmitra-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"temperature", "humidity", "ph", "rainfall"},
		Properties: map[string]validation.Property{
			"sessionId":   {Type: "string"},
			"temperature": {Type: "number", Description: "Air temperature in °C"},
			"humidity": {
				Type:        "number",
				Description: "Relative humidity in percent",
				Minimum:     validation.Float64Ptr(0),
				Maximum:     validation.Float64Ptr(100),
			},
			"ph": {
				Type:        "number",
				Description: "Soil pH",
				Minimum:     validation.Float64Ptr(0),
				Maximum:     validation.Float64Ptr(14),
			},
			"rainfall": {
				Type:        "number",
				Description: "Rainfall in mm",
				Minimum:     validation.Float64Ptr(0),
			},
		},
		AdditionalProperties: true,
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())
