package chatreply

import "khetmitra-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId"},
		Properties: map[string]validation.Property{
			"sessionId": {Type: "string", MinLength: validation.IntPtr(1)},
			"message":   {Type: "string", MaxLength: validation.IntPtr(2000)},
			"action": {
				Type: "string",
				Enum: []string{ActionSend, ActionReset},
			},
		},
		AdditionalProperties: true,
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())
