package detection

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	khttp "khetmitra-workers/internal/common/http"
)

// Classifier turns a submission into a diagnosis.
type Classifier interface {
	Classify(ctx context.Context, sub Submission) (Result, error)
}

// StaticClassifier always returns DefaultResult.
type StaticClassifier struct{}

func (StaticClassifier) Classify(ctx context.Context, _ Submission) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return DefaultResult(), nil
}

var ErrBadInference = errors.New("inference returned an invalid result")

// HTTPClassifier posts the submission to <baseURL>/classify.
type HTTPClassifier struct {
	client  *khttp.Client
	baseURL string
}

func NewHTTPClassifier(client *khttp.Client, baseURL string) *HTTPClassifier {
	return &HTTPClassifier{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type classifyRequest struct {
	ImageName   string `json:"imageName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	Symptoms    string `json:"symptoms,omitempty"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, sub Submission) (Result, error) {
	req := classifyRequest{
		ImageName:   sub.ImageName,
		ContentType: sub.ContentType,
		Symptoms:    sub.Symptoms,
	}
	if len(sub.Image) > 0 {
		req.ImageBase64 = base64.StdEncoding.EncodeToString(sub.Image)
	}

	var res Result
	if err := c.client.PostJSON(ctx, c.baseURL+"/classify", req, &res); err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}
	if res.Label == "" || res.ConfidencePercent < 0 || res.ConfidencePercent > 100 {
		return Result{}, fmt.Errorf("%w: label=%q confidence=%d", ErrBadInference, res.Label, res.ConfidencePercent)
	}
	return res, nil
}
