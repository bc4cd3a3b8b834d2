package detectdisease

import (
	"khetmitra-workers/internal/capture"
	"khetmitra-workers/internal/detection"
)

type Input struct {
	SessionID   string `json:"sessionId"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	ImageName   string `json:"imageName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Symptoms    string `json:"symptoms,omitempty"`

	CameraStatus     string `json:"cameraStatus,omitempty"`
	MicrophoneStatus string `json:"microphoneStatus,omitempty"`
}

type Output struct {
	JobID      string            `json:"detectionJobId"`
	SessionID  string            `json:"sessionId"`
	State      detection.State   `json:"detectionState"`
	Progress   int               `json:"progress"`
	Stage      detection.Stage   `json:"stage"`
	StageLabel string            `json:"stageLabel"`
	Result     *detection.Result `json:"diagnosis"`

	Affordances *capture.Affordances `json:"affordances,omitempty"`
}
