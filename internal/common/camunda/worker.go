// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sort"
	"sync"
	"time"

	"khetmitra-workers/internal/common/config"
	"khetmitra-workers/internal/common/metrics"
	"khetmitra-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// HandlerFunc is the signature every worker's Handle method satisfies.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Manager opens job workers and closes them together on shutdown.
type Manager struct {
	client zbc.Client
	obs    *observability.Observability
	logger *zap.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewManager(client zbc.Client, obs *observability.Observability, logger *zap.Logger) *Manager {
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Manager{
		client:  client,
		obs:     obs,
		logger:  logger,
		workers: make(map[string]worker.JobWorker),
	}
}

// Register opens a job worker for taskType unless it is disabled in config.
func (m *Manager) Register(taskType string, wcfg config.WorkerConfig, handler HandlerFunc) bool {
	if !wcfg.Enabled {
		m.logger.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	jw := m.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(m.Instrument(taskType, handler))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	m.mu.Lock()
	m.workers[taskType] = jw
	m.mu.Unlock()

	m.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

// Instrument wraps handler with the active gauge, duration histogram,
// a tracing span, and panic recovery.
func (m *Manager) Instrument(taskType string, handler HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()

		ctx, span := m.obs.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("process.instance.key", job.ProcessInstanceKey),
		)

		status := "handled"
		defer func() {
			if r := recover(); r != nil {
				status = "panic"
				metrics.WorkerJobsFailed.WithLabelValues(taskType, "PANIC").Inc()
				m.logger.Error("job handler panicked",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Any("panic", r),
				)
			}
			elapsed := time.Since(start)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			m.obs.RecordJobProcessed(ctx, taskType, status)
			m.obs.RecordJobDuration(ctx, taskType, elapsed, status)
			observability.EndSpan(span, status, nil)
		}()

		handler(client, job)
	}
}

// TaskTypes lists the registered task types in order.
func (m *Manager) TaskTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.workers))
	for t := range m.workers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Close stops polling on every worker and waits for in-flight jobs.
func (m *Manager) Close() {
	m.mu.Lock()
	workers := m.workers
	m.workers = make(map[string]worker.JobWorker)
	m.mu.Unlock()

	for taskType, jw := range workers {
		m.logger.Info("stopping worker", zap.String("taskType", taskType))
		jw.Close()
	}
	for _, jw := range workers {
		jw.AwaitClose()
	}
}
