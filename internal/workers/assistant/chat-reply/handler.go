package chatreply

import (
	"context"

	"khetmitra-workers/internal/chat"
	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "chat-reply"

type Handler struct {
	config    *Config
	store     *chat.Store
	assistant *chat.Assistant
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, store *chat.Store, assistant *chat.Assistant, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		store:     store,
		assistant: assistant,
		errors:    errors.NewErrorHandler(l),
		logger:    l,
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
	if input.Action == ActionReset {
		t, err := h.store.Reset(ctx, input.SessionID)
		if err != nil {
			return nil, errors.NewTranscriptStoreFailedError(err)
		}
		return h.output(input.SessionID, t, false), nil
	}

	reply := h.assistant.Respond(ctx, h.store.Load(ctx, input.SessionID), input.Message)
	if reply.Changed {
		if err := h.store.Save(ctx, input.SessionID, reply.Transcript); err != nil {
			return nil, errors.NewTranscriptStoreFailedError(err)
		}
	}

	h.logger.Debug("chat reply", map[string]interface{}{
		"sessionId":    input.SessionID,
		"messages":     len(reply.Transcript),
		"showCropForm": reply.ShowCropForm,
	})
	return h.output(input.SessionID, reply.Transcript, reply.ShowCropForm), nil
}

// output reports the last assistant message as the reply. A message the
// user just sent is not a reply.
func (h *Handler) output(sessionID string, t chat.Transcript, showCropForm bool) *Output {
	out := &Output{
		SessionID:    sessionID,
		ShowCropForm: showCropForm,
		Transcript:   t,
		QuickActions: chat.QuickActions(),
	}
	if last, ok := t.Last(); ok && last.Role == chat.RoleAssistant {
		out.Reply = last.Content
	}
	return out
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
