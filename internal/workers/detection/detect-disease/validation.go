package detectdisease

import (
	"khetmitra-workers/internal/capture"
	"khetmitra-workers/internal/common/validation"
)

var deviceStatuses = []string{capture.DeviceOK, capture.DeviceDenied, capture.DeviceUnavailable}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Browser session the job belongs to",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(128),
			},
			"imageBase64": {
				Type:        "string",
				Description: "Leaf photo, base64 encoded",
			},
			"imageName": {
				Type:      "string",
				MaxLength: validation.IntPtr(255),
			},
			"contentType": {
				Type:    "string",
				Pattern: validation.StringPtr(`^image/`),
			},
			"symptoms": {
				Type:        "string",
				Description: "Typed or dictated symptom description",
				MaxLength:   validation.IntPtr(4000),
			},
			"cameraStatus": {
				Type:        "string",
				Description: "Result of probing the camera on the page",
				Enum:        deviceStatuses,
			},
			"microphoneStatus": {
				Type: "string",
				Enum: deviceStatuses,
			},
		},
		AdditionalProperties: true,
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())
