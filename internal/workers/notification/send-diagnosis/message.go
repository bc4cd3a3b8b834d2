package senddiagnosis

import (
	"fmt"
	"strings"

	"khetmitra-workers/internal/detection"
)

// SMSText keeps to a single line with the first remediation step only.
func SMSText(d detection.Result) string {
	msg := fmt.Sprintf("KhetMitra: %s detected (%d%% confidence, %s).", d.Label, d.ConfidencePercent, d.Severity)
	if len(d.RemediationSteps) > 0 {
		msg += " " + d.RemediationSteps[0]
	}
	return msg
}

func EmailSubject(d detection.Result) string {
	return "Crop diagnosis: " + d.Label
}

func EmailBody(d detection.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Diagnosis: %s\n", d.Label)
	fmt.Fprintf(&b, "Confidence: %d%%\n", d.ConfidencePercent)
	fmt.Fprintf(&b, "Severity: %s\n", d.Severity)
	if len(d.RemediationSteps) > 0 {
		b.WriteString("\nRecommended steps:\n")
		for i, step := range d.RemediationSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	return b.String()
}
