package fetchweather

import (
	"context"

	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"
	"khetmitra-workers/internal/weather"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "fetch-weather"

type WeatherSource interface {
	Current(ctx context.Context) (weather.Reading, bool, error)
}

type Handler struct {
	config  *Config
	weather WeatherSource
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, source WeatherSource, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		weather: source,
		errors:  errors.NewErrorHandler(l),
		logger:  l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	var input Input
	if err := camunda.DecodeVariables(job, inputValidator, &input); err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.completeJob(client, job, h.execute(ctx, &input))
}

// execute always produces an output. An unavailable provider is reported in
// the message.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	r, cached, err := h.weather.Current(ctx)
	if err != nil {
		h.logger.Warn("weather unavailable", map[string]interface{}{
			"sessionId": input.SessionID,
			"error":     err.Error(),
		})
		return &Output{Message: weather.FallbackMessage(err)}
	}
	return &Output{
		Available:   true,
		Temperature: r.Temperature,
		WindSpeed:   r.WindSpeed,
		WeatherCode: r.WeatherCode,
		Message:     r.Message(),
		Cached:      cached,
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
