package detectdisease

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"strings"
	"time"

	"khetmitra-workers/internal/capture"
	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/errors"
	khttp "khetmitra-workers/internal/common/http"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"
	"khetmitra-workers/internal/detection"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "detect-disease"

var ErrEmptySubmission = stderrors.New("an image or a symptom description is required")

type Handler struct {
	config   *Config
	sessions *detection.Sessions
	errors   *errors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *Config, sessions *detection.Sessions, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
		errors:   errors.NewErrorHandler(l),
		logger:   l,
		now:      time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

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

func (h *Handler) submission(input *Input) (detection.Submission, error) {
	sub := detection.Submission{
		ImageName:   input.ImageName,
		ContentType: input.ContentType,
		Symptoms:    strings.TrimSpace(input.Symptoms),
	}
	if input.ImageBase64 != "" {
		img, err := base64.StdEncoding.DecodeString(input.ImageBase64)
		if err != nil {
			return sub, errors.NewInputValidationError("imageBase64: " + err.Error())
		}
		sub.Image = img
		if sub.ImageName == "" {
			sub.ImageName = capture.FrameName(h.now())
		}
		if sub.ContentType == "" {
			sub.ContentType = capture.ImageContentType
		}
	}
	if sub.Empty() {
		return sub, errors.NewInputValidationError(ErrEmptySubmission.Error())
	}
	return sub, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sub, err := h.submission(input)
	if err != nil {
		return nil, err
	}

	handle := h.sessions.Submit(ctx, input.SessionID, sub)
	defer h.sessions.Release(handle)

	snap, err := handle.Wait(ctx)
	if !h.sessions.IsCurrent(handle) {
		return nil, errors.NewDetectionCancelledError(detection.ErrCancelled).
			WithMetadata("detectionJobId", handle.ID())
	}
	if err != nil {
		return nil, mapDetectionError(err)
	}

	output := &Output{
		JobID:      snap.JobID,
		SessionID:  snap.SessionID,
		State:      snap.State,
		Progress:   snap.Progress,
		Stage:      snap.Stage,
		StageLabel: snap.Stage.Label(),
		Result:     snap.Result,
	}
	if input.CameraStatus != "" || input.MicrophoneStatus != "" {
		a := capture.AffordancesFor(capture.StatusError(input.CameraStatus), capture.StatusError(input.MicrophoneStatus))
		output.Affordances = &a
	}
	return output, nil
}

func mapDetectionError(err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("detection", err)
	case stderrors.Is(err, detection.ErrCancelled), stderrors.Is(err, context.Canceled):
		return errors.NewDetectionCancelledError(err)
	case stderrors.Is(err, detection.ErrBadInference):
		return errors.NewDetectionFailedError(err)
	case khttp.IsTimeout(err):
		return errors.NewInferenceTimeoutError(err)
	default:
		return errors.NewInferenceFailedError(err)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
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
