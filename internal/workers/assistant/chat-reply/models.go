package chatreply

import "khetmitra-workers/internal/chat"

const (
	ActionSend  = "send"
	ActionReset = "reset"
)

type Input struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	// Action defaults to send.
	Action string `json:"action,omitempty"`
}

type Output struct {
	SessionID    string          `json:"sessionId"`
	Reply        string          `json:"reply,omitempty"`
	ShowCropForm bool            `json:"showCropForm"`
	Transcript   chat.Transcript `json:"transcript"`
	QuickActions []string        `json:"quickActions"`
}
