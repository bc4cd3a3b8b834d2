package recommendpractices

import (
	"context"
	stderrors "errors"
	"fmt"

	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"
	"khetmitra-workers/internal/practices"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "recommend-practices"

type Handler struct {
	config  *Config
	catalog *practices.Catalog
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, catalog *practices.Catalog, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		catalog: catalog,
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}
	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	sel := practices.BudgetSelection{Tier: input.BudgetTier, CustomAmount: input.CustomAmount}
	rec, err := h.catalog.Recommend(sel)
	if err != nil {
		if stderrors.Is(err, practices.ErrInvalidBudget) {
			return nil, errors.NewInvalidBudgetTierError(err)
		}
		return nil, fmt.Errorf("recommend practices: %w", err)
	}

	views := make([]PracticeView, 0, len(rec.Practices))
	for _, p := range rec.Practices {
		views = append(views, PracticeView{
			Practice:        p,
			InvestmentLabel: practices.FormatINR(p.InvestmentRange.Min) + " - " + practices.FormatINR(p.InvestmentRange.Max),
		})
	}

	h.logger.Debug("practices filtered", map[string]interface{}{
		"tier":  string(sel.Tier),
		"count": len(views),
	})

	return &Output{
		BudgetTier:        sel.Tier,
		BudgetLabel:       rec.Label,
		CatalogVersion:    h.catalog.Version(),
		Practices:         views,
		RecommendedCount:  len(views),
		HasRecommendation: len(views) > 0,
	}, nil
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
