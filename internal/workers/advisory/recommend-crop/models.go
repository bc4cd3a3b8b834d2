package recommendcrop

import "khetmitra-workers/internal/prediction"

type Input struct {
	// SessionID, when set, appends the reply to the session's chat.
	SessionID   string  `json:"sessionId,omitempty"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

type Output struct {
	Success         bool                  `json:"success"`
	RecommendedCrop string                `json:"recommendedCrop,omitempty"`
	CropFacts       *prediction.CropFacts `json:"cropFacts,omitempty"`
	Message         string                `json:"message"`
}
