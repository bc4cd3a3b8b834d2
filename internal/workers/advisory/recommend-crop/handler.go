package recommendcrop

import (
	"context"
	stderrors "errors"

	"khetmitra-workers/internal/chat"
	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"
	"khetmitra-workers/internal/prediction"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "recommend-crop"

// Predictor is the crop model.
type Predictor interface {
	Predict(ctx context.Context, f prediction.Features) (string, error)
}

type Handler struct {
	config     *Config
	predictor  Predictor
	transcript *chat.Store
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the handler. transcripts may be nil, in which case
// replies are not added to the chat.
func NewHandler(config *Config, predictor Predictor, transcripts *chat.Store, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		predictor:  predictor,
		transcript: transcripts,
		errors:     errors.NewErrorHandler(l),
		logger:     l,
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

// execute reports a failed prediction in the output message rather than as
// a job failure. Only invalid features and transcript writes fail the job,
// and only successful predictions are appended to the session chat.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	features := prediction.Features{
		Temperature: input.Temperature,
		Humidity:    input.Humidity,
		PH:          input.PH,
		Rainfall:    input.Rainfall,
	}
	if err := features.Validate(); err != nil {
		return nil, errors.NewInvalidFeaturesError(err)
	}

	crop, err := h.predictor.Predict(ctx, features)
	if stderrors.Is(err, prediction.ErrInvalidFeatures) {
		return nil, errors.NewInvalidFeaturesError(err)
	}
	output := &Output{Message: prediction.Reply(crop, err)}
	if err != nil {
		// failures stay on the form and never reach the chat
		h.logger.Warn("crop prediction failed", map[string]interface{}{"error": err.Error()})
		return output, nil
	}
	output.Success = true
	output.RecommendedCrop = crop
	if facts, ok := prediction.LookupCrop(crop); ok {
		output.CropFacts = &facts
	}

	if input.SessionID != "" && h.transcript != nil {
		t := chat.AppendAssistant(h.transcript.Load(ctx, input.SessionID), output.Message)
		if err := h.transcript.Save(ctx, input.SessionID, t); err != nil {
			return nil, errors.NewTranscriptStoreFailedError(err)
		}
	}
	return output, nil
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
