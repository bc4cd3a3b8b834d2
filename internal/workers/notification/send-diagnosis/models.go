package senddiagnosis

import "khetmitra-workers/internal/detection"

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"

	StatusSent = "sent"
)

type Input struct {
	SessionID string `json:"sessionId"`
	Channel   string `json:"channel"`
	// Recipient is an E.164 phone number for sms and an address for email.
	Recipient string `json:"recipient"`
	// Diagnosis overrides the session's latest finished detection.
	Diagnosis *detection.Result `json:"diagnosis,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Channel        string `json:"channel"`
	Status         string `json:"status"`
	MessageID      string `json:"messageId"`
	DiagnosisLabel string `json:"diagnosisLabel"`
	SentAt         string `json:"sentAt"`
}
