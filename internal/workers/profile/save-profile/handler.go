package saveprofile

import (
	"context"

	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"
	"khetmitra-workers/internal/session"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "save-profile"

type Repository interface {
	Load(ctx context.Context, sessionID, defaultLanguage string) (*session.Settings, bool, error)
	Save(ctx context.Context, sessionID string, s *session.Settings) error
}

type Handler struct {
	config *Config
	repo   Repository
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, repo Repository, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		repo:   repo,
		errors: errors.NewErrorHandler(l),
		logger: l,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	settings, found, err := h.repo.Load(ctx, input.SessionID, h.config.DefaultLanguage)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("load-profile", err)
	}

	if input.Language != "" {
		if err := settings.SetLanguage(input.Language); err != nil {
			return nil, errors.NewInputValidationError(err.Error()).WithMetadata("language", input.Language)
		}
	}
	if input.Profile != nil {
		settings.SetProfile(*input.Profile)
	}

	if err := h.repo.Save(ctx, input.SessionID, settings); err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("profile saved", map[string]interface{}{
		"sessionId": input.SessionID,
		"language":  settings.Language(),
		"created":   !found,
	})
	return &Output{
		SessionID: input.SessionID,
		Language:  settings.Language(),
		Profile:   settings.Profile(),
		Created:   !found,
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
