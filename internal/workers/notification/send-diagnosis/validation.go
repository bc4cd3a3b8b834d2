package senddiagnosis

import (
	"regexp"

	"khetmitra-workers/internal/common/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId", "channel", "recipient"},
		Properties: map[string]validation.Property{
			"sessionId": {Type: "string", MinLength: validation.IntPtr(1)},
			"channel": {
				Type: "string",
				Enum: []string{ChannelSMS, ChannelEmail},
			},
			"recipient": {Type: "string", MinLength: validation.IntPtr(1)},
			"diagnosis": {Type: "object"},
		},
		AdditionalProperties: true,
	}
}

var inputValidator = validation.MustCompile(GetInputSchema())

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// validateRecipient checks the recipient against the channel's address format.
func validateRecipient(channel, recipient string) error {
	switch channel {
	case ChannelEmail:
		return ozzo.Validate(recipient, ozzo.Required, is.EmailFormat)
	default:
		return ozzo.Validate(recipient, ozzo.Required,
			ozzo.Match(e164).Error("must be an E.164 phone number"))
	}
}
