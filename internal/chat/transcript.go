// Package chat keeps the assistant conversation for a session.
package chat

import (
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	GreetingText = "नमस्ते! How can I help your farm today?"
	NewChatText  = "New chat started. Ask me anything about your crops."
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered message list, stored verbatim as a JSON array.
type Transcript []Message

func Greeting() Transcript {
	return Transcript{{Role: RoleAssistant, Content: GreetingText}}
}

func NewChat() Transcript {
	return Transcript{{Role: RoleAssistant, Content: NewChatText}}
}

func (t Transcript) Append(msgs ...Message) Transcript {
	out := make(Transcript, 0, len(t)+len(msgs))
	out = append(out, t...)
	return append(out, msgs...)
}

func (t Transcript) Last() (Message, bool) {
	if len(t) == 0 {
		return Message{}, false
	}
	return t[len(t)-1], true
}

func (t Transcript) Encode() ([]byte, error) {
	if t == nil {
		t = Transcript{}
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return raw, nil
}

// Decode parses a stored transcript. Only a non-empty array of messages
// with known roles is accepted; anything else reports false.
func Decode(raw []byte) (Transcript, bool) {
	var t Transcript
	if err := json.Unmarshal(raw, &t); err != nil || len(t) == 0 {
		return nil, false
	}
	for _, m := range t {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return nil, false
		}
	}
	return t, true
}
