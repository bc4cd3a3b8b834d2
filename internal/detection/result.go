package detection

// Result is the diagnosis revealed when a job reaches StageDone.
type Result struct {
	Label             string   `json:"label"`
	ConfidencePercent int      `json:"confidencePercent"`
	Severity          string   `json:"severity"`
	RemediationSteps  []string `json:"remediationSteps"`
}

// Submission is what the farmer sent: a photo, a symptom description, or both.
type Submission struct {
	ImageName   string `json:"imageName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Image       []byte `json:"image,omitempty"`
	Symptoms    string `json:"symptoms,omitempty"`
}

// Empty reports whether neither image bytes nor symptoms were submitted.
// A file name alone is not a submission.
func (s Submission) Empty() bool {
	return len(s.Image) == 0 && s.Symptoms == ""
}

// DefaultResult is the fixed diagnosis returned when no inference service is configured.
func DefaultResult() Result {
	return Result{
		Label:             "Leaf Blight",
		ConfidencePercent: 87,
		Severity:          "Moderate",
		RemediationSteps: []string{
			"Apply recommended fungicide (ABC) as per dosage.",
			"Remove heavily infected leaves.",
			"Improve airflow and avoid overhead watering.",
		},
	}
}
