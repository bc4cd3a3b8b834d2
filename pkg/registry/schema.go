// pkg/registry/schema.go
package registry

import "khetmitra-workers/internal/common/validation"

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity documents one job worker for process modellers.
type Activity struct {
	ID          string                `json:"id"`
	DisplayName string                `json:"displayName"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	TaskType    string                `json:"taskType"`
	InputSchema validation.JSONSchema `json:"inputSchema"`
	ErrorCodes  []string              `json:"errorCodes"`
	Timeout     string                `json:"timeout"`
	Retries     int                   `json:"retries"`
	Tags        []string              `json:"tags,omitempty"`
}
