package main

import (
	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/validation"
	"khetmitra-workers/pkg/registry"

	fw "khetmitra-workers/internal/workers/advisory/fetch-weather"
	rc "khetmitra-workers/internal/workers/advisory/recommend-crop"
	cr "khetmitra-workers/internal/workers/assistant/chat-reply"
	dd "khetmitra-workers/internal/workers/detection/detect-disease"
	sl "khetmitra-workers/internal/workers/market/search-listings"
	sd "khetmitra-workers/internal/workers/notification/send-diagnosis"
	croi "khetmitra-workers/internal/workers/practices/calculate-roi"
	rp "khetmitra-workers/internal/workers/practices/recommend-practices"
	sp "khetmitra-workers/internal/workers/profile/save-profile"
)

type workerEntry struct {
	taskType    string
	displayName string
	description string
	category    string
	schema      validation.JSONSchema
	timeout     string
	codes       []errors.ErrorCode
}

var workers = []workerEntry{
	{dd.TaskType, "Detect Disease", "Runs a detection job for a crop photo or symptom text and returns the diagnosis.", "detection", dd.GetInputSchema(), "60s",
		[]errors.ErrorCode{errors.ErrCodeDetectionFailed, errors.ErrCodeDetectionCancelled, errors.ErrCodeInferenceFailed, errors.ErrCodeInferenceTimeout}},
	{rp.TaskType, "Recommend Practices", "Filters the practice catalog by budget tier or custom amount.", "practices", rp.GetInputSchema(), "30s",
		[]errors.ErrorCode{errors.ErrCodeInvalidBudgetTier}},
	{croi.TaskType, "Calculate ROI", "Projects extra revenue, three-year ROI, break-even and risk for a practice investment.", "practices", croi.GetInputSchema(), "30s",
		[]errors.ErrorCode{errors.ErrCodeInvalidROIInput}},
	{rc.TaskType, "Recommend Crop", "Asks the crop model for a crop suited to the field conditions.", "advisory", rc.GetInputSchema(), "15s",
		[]errors.ErrorCode{errors.ErrCodeInvalidFeatures, errors.ErrCodeTranscriptStoreFailed}},
	{fw.TaskType, "Fetch Weather", "Returns the current weather at the configured location.", "advisory", fw.GetInputSchema(), "10s", nil},
	{cr.TaskType, "Chat Reply", "Appends a farmer message to the session chat and answers it.", "assistant", cr.GetInputSchema(), "15s",
		[]errors.ErrorCode{errors.ErrCodeTranscriptStoreFailed}},
	{sl.TaskType, "Search Market Listings", "Searches produce listings, falling back to the static list.", "market", sl.GetInputSchema(), "30s", nil},
	{sd.TaskType, "Send Diagnosis", "Sends the latest diagnosis to the farmer by SMS or email.", "notification", sd.GetInputSchema(), "30s",
		[]errors.ErrorCode{errors.ErrCodeInvalidRecipient, errors.ErrCodeNotificationChannelDisabled, errors.ErrCodeNotificationSendFailed}},
	{sp.TaskType, "Save Profile", "Stores the session language and farmer profile.", "profile", sp.GetInputSchema(), "30s",
		[]errors.ErrorCode{errors.ErrCodeQueryExecutionFailed, errors.ErrCodeDatabaseInsertFailed}},
}

// Activities describes every worker registered by the worker manager.
func Activities() []registry.Activity {
	out := make([]registry.Activity, 0, len(workers))
	for _, w := range workers {
		codes := []string{string(errors.ErrCodeInputValidationFailed)}
		retries := 0
		for _, c := range w.codes {
			codes = append(codes, string(c))
			if n := errors.GetRetryCount(c); n > retries {
				retries = n
			}
		}
		out = append(out, registry.Activity{
			ID:          w.taskType,
			DisplayName: w.displayName,
			Description: w.description,
			Category:    w.category,
			TaskType:    w.taskType,
			InputSchema: w.schema,
			ErrorCodes:  codes,
			Timeout:     w.timeout,
			Retries:     retries,
		})
	}
	return out
}
