package searchlistings

import (
	"context"

	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"
	"khetmitra-workers/internal/market"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "search-market-listings"

type Searcher interface {
	Search(ctx context.Context, q market.Query) market.Result
}

type Handler struct {
	config   *Config
	searcher Searcher
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, searcher Searcher, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		searcher: searcher,
		errors:   errors.NewErrorHandler(l),
		logger:   l,
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

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	res := h.searcher.Search(ctx, market.Query{
		Text:     input.Query,
		Location: input.Location,
		From:     input.From,
		Size:     input.Size,
	})
	h.logger.Debug("market search", map[string]interface{}{
		"query":  input.Query,
		"total":  res.Total,
		"source": res.Source,
	})
	return &Output{
		Listings: res.Listings,
		Total:    res.Total,
		Source:   res.Source,
		Degraded: res.Source == market.SourceFallback,
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
