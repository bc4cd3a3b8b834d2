package senddiagnosis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"
	"khetmitra-workers/internal/detection"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "send-diagnosis"

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

type SMSSender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

// DiagnosisSource returns the latest published detection snapshot for a session.
type DiagnosisSource interface {
	Latest(ctx context.Context, sessionID string) (detection.Snapshot, bool, error)
}

type Handler struct {
	config    *Config
	email     EmailSender
	sms       SMSSender
	diagnoses DiagnosisSource
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, diagnoses DiagnosisSource, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		email:     email,
		sms:       sms,
		diagnoses: diagnoses,
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
	recipient := strings.TrimSpace(input.Recipient)
	if err := validateRecipient(input.Channel, recipient); err != nil {
		return nil, errors.NewInvalidRecipientError(fmt.Sprintf("%s recipient: %v", input.Channel, err))
	}
	if !h.channelEnabled(input.Channel) {
		return nil, errors.NewNotificationChannelDisabledError(input.Channel)
	}

	diagnosis, err := h.diagnosis(ctx, input)
	if err != nil {
		return nil, err
	}

	var messageID string
	switch input.Channel {
	case ChannelEmail:
		messageID, err = h.email.Send(ctx, recipient, EmailSubject(diagnosis), EmailBody(diagnosis))
	default:
		messageID, err = h.sms.Send(ctx, recipient, SMSText(diagnosis))
	}
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(input.Channel, err)
	}

	h.logger.Info("diagnosis sent", map[string]interface{}{
		"sessionId": input.SessionID,
		"channel":   input.Channel,
		"messageId": messageID,
	})
	return &Output{
		NotificationID: uuid.NewString(),
		Channel:        input.Channel,
		Status:         StatusSent,
		MessageID:      messageID,
		DiagnosisLabel: diagnosis.Label,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) channelEnabled(channel string) bool {
	if channel == ChannelEmail {
		return h.config.EmailEnabled && h.email != nil
	}
	return h.config.SMSEnabled && h.sms != nil
}

// diagnosis prefers the one in the input, then the session's finished job.
func (h *Handler) diagnosis(ctx context.Context, input *Input) (detection.Result, error) {
	if input.Diagnosis != nil && input.Diagnosis.Label != "" {
		return *input.Diagnosis, nil
	}
	if h.diagnoses == nil {
		return detection.Result{}, errors.NewResourceNotFoundError("detection", "no diagnosis for session "+input.SessionID)
	}
	snap, found, err := h.diagnoses.Latest(ctx, input.SessionID)
	if err != nil {
		return detection.Result{}, errors.NewQueryExecutionFailedError("latest-detection", err)
	}
	if !found || snap.State != detection.StateDone || snap.Result == nil {
		return detection.Result{}, errors.NewResourceNotFoundError("detection", "no finished diagnosis for session "+input.SessionID)
	}
	return *snap.Result, nil
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
