// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input validation (business, never retried)
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeInvalidROIInput       ErrorCode = "INVALID_ROI_INPUT"
	ErrCodeInvalidProgress       ErrorCode = "INVALID_PROGRESS"
	ErrCodeInvalidBudgetTier     ErrorCode = "INVALID_BUDGET_TIER"
	ErrCodeInvalidFeatures       ErrorCode = "INVALID_FEATURES"
	ErrCodeInvalidRecipient      ErrorCode = "INVALID_RECIPIENT"

	// Practice catalog
	ErrCodeCatalogInvalid ErrorCode = "CATALOG_INVALID"

	// Detection pipeline
	ErrCodeDetectionFailed    ErrorCode = "DETECTION_FAILED"
	ErrCodeDetectionCancelled ErrorCode = "DETECTION_CANCELLED"
	ErrCodeInferenceFailed    ErrorCode = "INFERENCE_FAILED"
	ErrCodeInferenceTimeout   ErrorCode = "INFERENCE_TIMEOUT"

	// Storage
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeTranscriptStoreFailed    ErrorCode = "TRANSCRIPT_STORE_FAILED"

	// Notifications
	ErrCodeNotificationSendFailed      ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeNotificationChannelDisabled ErrorCode = "NOTIFICATION_CHANNEL_DISABLED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInputValidationError reports a job payload that failed its input schema.
func NewInputValidationError(details string) *StandardError {
	e := newError(ErrCodeInputValidationFailed, "Job input failed validation", nil, false)
	e.Details = details
	return e
}

// NewInvalidROIInputError wraps a rejected ROI input.
func NewInvalidROIInputError(err error) *StandardError {
	return newError(ErrCodeInvalidROIInput, "ROI inputs rejected", err, false)
}

func NewInvalidProgressError(err error) *StandardError {
	return newError(ErrCodeInvalidProgress, "Progress value out of range", err, false)
}

func NewInvalidBudgetTierError(err error) *StandardError {
	return newError(ErrCodeInvalidBudgetTier, "Budget selection rejected", err, false)
}

func NewInvalidFeaturesError(err error) *StandardError {
	return newError(ErrCodeInvalidFeatures, "Crop features rejected", err, false)
}

func NewInvalidRecipientError(details string) *StandardError {
	e := newError(ErrCodeInvalidRecipient, "Notification recipient is invalid", nil, false)
	e.Details = details
	return e
}

// NewCatalogInvalidError is returned when the practice catalog fails schema validation.
func NewCatalogInvalidError(err error) *StandardError {
	return newError(ErrCodeCatalogInvalid, "Practice catalog is invalid", err, false)
}

// NewDetectionFailedError reports a detection job that reached the Failed state.
func NewDetectionFailedError(err error) *StandardError {
	return newError(ErrCodeDetectionFailed, "Detection job failed", err, true)
}

func NewDetectionCancelledError(err error) *StandardError {
	return newError(ErrCodeDetectionCancelled, "Detection job was superseded or cancelled", err, false)
}

func NewInferenceFailedError(err error) *StandardError {
	return newError(ErrCodeInferenceFailed, "Inference service call failed", err, true)
}

func NewInferenceTimeoutError(err error) *StandardError {
	return newError(ErrCodeInferenceTimeout, "Inference service timed out", err, true)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", err, true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, fmt.Sprintf("Query '%s' failed", queryType), err, true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database write failed", err, true)
}

func NewTranscriptStoreFailedError(err error) *StandardError {
	return newError(ErrCodeTranscriptStoreFailed, "Chat transcript store unavailable", err, true)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, fmt.Sprintf("Failed to send %s notification", channel), err, true).
		WithMetadata("channel", channel)
}

func NewNotificationChannelDisabledError(channel string) *StandardError {
	return newError(ErrCodeNotificationChannelDisabled, fmt.Sprintf("Notification channel '%s' is disabled", channel), nil, false).
		WithMetadata("channel", channel)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	e := newError("BUSINESS_RULE_VIOLATION", message, nil, false)
	e.Details = details
	return e
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err, true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err, true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	e := newError("RESOURCE_NOT_FOUND", fmt.Sprintf("Resource not found in %s", service), nil, false)
	e.Details = details
	return e
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled on
// BPMN boundary events. Codes absent here are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInputValidationFailed:       "INPUT_VALIDATION_FAILED",
	ErrCodeInvalidROIInput:             "INVALID_ROI_INPUT",
	ErrCodeInvalidProgress:             "INVALID_PROGRESS",
	ErrCodeInvalidBudgetTier:           "INVALID_BUDGET_TIER",
	ErrCodeInvalidFeatures:             "INVALID_FEATURES",
	ErrCodeInvalidRecipient:            "INVALID_RECIPIENT",
	ErrCodeCatalogInvalid:              "CATALOG_INVALID",
	ErrCodeDetectionFailed:             "DETECTION_FAILED",
	ErrCodeDetectionCancelled:          "DETECTION_CANCELLED",
	ErrCodeInferenceFailed:             "DETECTION_FAILED",
	ErrCodeInferenceTimeout:            "DETECTION_FAILED",
	ErrCodeDatabaseConnectionFailed:    "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:        "QUERY_EXECUTION_FAILED",
	ErrCodeDatabaseInsertFailed:        "DATABASE_INSERT_FAILED",
	ErrCodeTranscriptStoreFailed:       "TRANSCRIPT_STORE_FAILED",
	ErrCodeNotificationSendFailed:      "NOTIFICATION_SEND_FAILED",
	ErrCodeNotificationChannelDisabled: "NOTIFICATION_CHANNEL_DISABLED",
}

// GetRetryCount returns the number of engine retries for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeTranscriptStoreFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeInferenceFailed,
		"EXTERNAL_SERVICE_ERROR":
		return 3

	case ErrCodeInferenceTimeout, "TIMEOUT_ERROR":
		return 2

	case ErrCodeDetectionFailed:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError extracts a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DETECTION") || strings.Contains(codeStr, "INFERENCE"):
		return "DETECTION"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "TRANSCRIPT"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "RECIPIENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "EXTERNAL"
	default:
		return "OTHER"
	}
}
