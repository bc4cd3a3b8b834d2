package detection

import (
	"errors"
	"fmt"
)

// Stage is a named phase of a detection job, derived from its progress.
type Stage string

const (
	StageNone              Stage = "none"
	StageUploading         Stage = "uploading"
	StageAnalyzing         Stage = "analyzing"
	StageGeneratingResults Stage = "generating_results"
	StageDone              Stage = "done"
)

const (
	// Step is how far one tick moves a running job.
	Step        = 10
	MaxProgress = 100
)

var ErrInvalidProgress = errors.New("progress must be within [0,100]")

// Label is the banner text shown for the stage. StageNone has no banner.
func (s Stage) Label() string {
	switch s {
	case StageUploading:
		return "Uploading"
	case StageAnalyzing:
		return "Analyzing"
	case StageGeneratingResults:
		return "Generating Results"
	case StageDone:
		return "Results"
	default:
		return ""
	}
}

// StageFor maps a progress percentage to its stage.
func StageFor(progress int) (Stage, error) {
	switch {
	case progress < 0 || progress > MaxProgress:
		return StageNone, fmt.Errorf("%w: got %d", ErrInvalidProgress, progress)
	case progress == 0:
		return StageNone, nil
	case progress < 34:
		return StageUploading, nil
	case progress < 67:
		return StageAnalyzing, nil
	case progress < MaxProgress:
		return StageGeneratingResults, nil
	default:
		return StageDone, nil
	}
}

// Advance moves progress one step, clamped to MaxProgress. Values outside
// [0,100] are clamped into range first.
func Advance(progress int) int {
	if progress < 0 {
		progress = 0
	}
	if progress >= MaxProgress {
		return MaxProgress
	}
	next := progress + Step
	if next > MaxProgress {
		return MaxProgress
	}
	return next
}
