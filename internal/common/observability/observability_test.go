package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsJobSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := NewWithOptions(Options{
		ServiceName:   "khetmitra-test",
		Registerer:    promclient.NewRegistry(),
		SpanProcessor: recorder,
	})
	defer obs.Shutdown()

	_, span := obs.StartSpan(context.Background(), "calculate-roi", attribute.Int64("job.key", 42))
	EndSpan(span, "failed", errors.New("INVALID_ROI_INPUT"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "calculate-roi", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("job.status", "failed"))
}

func TestRecordJobMetrics_ExposedOnRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := NewWithOptions(Options{ServiceName: "khetmitra-test", Registerer: reg})
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "fetch-weather", "completed")
	obs.RecordJobDuration(ctx, "fetch-weather", 25*time.Millisecond, "completed")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "jobs_processed_total")
	assert.Contains(t, names, "jobs_duration_milliseconds")
	for _, n := range names {
		assert.NotContains(t, n, ".")
	}
}

func TestStartSpan_ZeroValueIsSafe(t *testing.T) {
	var obs Observability
	ctx, span := obs.StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	EndSpan(span, "completed", nil)
	obs.RecordJobProcessed(ctx, "noop", "completed")
}
