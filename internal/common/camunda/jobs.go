// internal/common/camunda/jobs.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"

	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// DecodeVariables checks the job variables against v, when given, and
// decodes them into out. Any failure is an INPUT_VALIDATION_FAILED error.
func DecodeVariables(job entities.Job, v *validation.Validator, out interface{}) error {
	raw := []byte(job.GetVariables())
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if v != nil {
		if res := v.ValidateJSON(raw); !res.Valid {
			return errors.NewInputValidationError(res.Summary())
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewInputValidationError(err.Error())
	}
	return nil
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("build complete command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete command: %w", err)
	}
	return nil
}
