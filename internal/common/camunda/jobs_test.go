package camunda

import (
	"testing"

	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionSchema = validation.MustCompile(validation.JSONSchema{
	Type:     "object",
	Required: []string{"sessionId"},
	Properties: map[string]validation.Property{
		"sessionId": {Type: "string", MinLength: validation.IntPtr(1)},
	},
	AdditionalProperties: true,
})

func jobWithVariables(vars string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: "test", Variables: vars, Retries: 3}}
}

func TestDecodeVariables(t *testing.T) {
	var out struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, DecodeVariables(jobWithVariables(`{"sessionId":"s1","other":true}`), sessionSchema, &out))
	assert.Equal(t, "s1", out.SessionID)
}

func TestDecodeVariables_Rejects(t *testing.T) {
	var out struct{}
	for name, vars := range map[string]string{
		"missing field": `{"other":1}`,
		"empty string":  `{"sessionId":""}`,
		"wrong type":    `{"sessionId":7}`,
		"no variables":  ``,
	} {
		t.Run(name, func(t *testing.T) {
			err := DecodeVariables(jobWithVariables(vars), sessionSchema, &out)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed))
		})
	}
}
