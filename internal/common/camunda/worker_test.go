package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"khetmitra-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func testJob(key int64, taskType string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       key,
		Type:      taskType,
		Variables: `{}`,
		Retries:   3,
	}}
}

func TestInstrument_CallsHandlerAndReleasesGauge(t *testing.T) {
	m := NewManager(nil, nil, zaptest.NewLogger(t))
	called := false

	h := m.Instrument("instrument-ok", func(_ worker.JobClient, job entities.Job) {
		called = true
		assert.Equal(t, int64(7), job.Key)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("instrument-ok")))
	})
	h(nil, testJob(7, "instrument-ok"))

	assert.True(t, called)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("instrument-ok")))
}

func TestInstrument_RecoversPanics(t *testing.T) {
	m := NewManager(nil, nil, zaptest.NewLogger(t))
	before := testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues("instrument-panic", "PANIC"))

	h := m.Instrument("instrument-panic", func(worker.JobClient, entities.Job) {
		panic("nil map")
	})
	assert.NotPanics(t, func() { h(nil, testJob(8, "instrument-panic")) })

	after := testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues("instrument-panic", "PANIC"))
	assert.Equal(t, before+1, after)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("instrument-panic")))
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), &RetryConfig{MaxRetries: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, "deploy", func(context.Context) error {
		calls++
		return errors.New("process not found")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_RetriesTransient(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}, "topology", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("rpc error: code = Unavailable")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, &RetryConfig{MaxRetries: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}, "topology", func(context.Context) error {
		return errors.New("connection refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff_Capped(t *testing.T) {
	rc := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 4*time.Second, backoff(rc, 2))
	assert.Equal(t, 5*time.Second, backoff(rc, 3))
}
