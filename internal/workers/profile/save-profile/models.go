package saveprofile

import "khetmitra-workers/internal/session"

type Input struct {
	SessionID string `json:"sessionId"`
	// Language is left unchanged when empty.
	Language string                `json:"language,omitempty"`
	Profile  *session.ProfilePatch `json:"profile,omitempty"`
}

type Output struct {
	SessionID string          `json:"sessionId"`
	Language  string          `json:"language"`
	Profile   session.Profile `json:"profile"`
	Created   bool            `json:"created"`
}
