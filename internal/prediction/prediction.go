// Package prediction asks the crop model which crop suits the field.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	khttp "khetmitra-workers/internal/common/http"
)

// ErrInvalidFeatures is returned before any call is made.
var ErrInvalidFeatures = errors.New("invalid crop features")

// Features are the field conditions sent to the model, in model order.
type Features struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

func (f Features) Vector() []float64 {
	return []float64{f.Temperature, f.Humidity, f.PH, f.Rainfall}
}

func (f Features) Validate() error {
	names := []string{"temperature", "humidity", "ph", "rainfall"}
	for i, v := range f.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidFeatures, names[i])
		}
	}
	return nil
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Prediction string `json:"prediction"`
}

type Client struct {
	http    *khttp.Client
	baseURL string
}

func NewClient(client *khttp.Client, baseURL string) *Client {
	return &Client{http: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Predict returns the recommended crop name. It does not retry.
func (c *Client) Predict(ctx context.Context, f Features) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	var resp predictResponse
	if err := c.http.PostJSON(ctx, c.baseURL+"/predict", predictRequest{Features: f.Vector()}, &resp); err != nil {
		return "", fmt.Errorf("prediction failed: %w", err)
	}
	if strings.TrimSpace(resp.Prediction) == "" {
		return "", errors.New("prediction failed: empty prediction")
	}
	return resp.Prediction, nil
}

// Reply renders the outcome of a prediction as the assistant shows it.
func Reply(crop string, err error) string {
	if err != nil {
		return "Error: " + err.Error()
	}
	msg := "Recommended crop: " + crop
	if facts, ok := LookupCrop(crop); ok {
		msg += " (" + facts.Summary() + ")"
	}
	return msg
}
