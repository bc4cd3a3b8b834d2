package detection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	khttp "khetmitra-workers/internal/common/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClassifier_SendsSubmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classify", r.URL.Path)
		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "capture-1.jpg", req.ImageName)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8}), req.ImageBase64)
		_ = json.NewEncoder(w).Encode(Result{Label: "Early Blight", ConfidencePercent: 91, Severity: "High", RemediationSteps: []string{"Spray"}})
	}))
	defer srv.Close()

	c := NewHTTPClassifier(khttp.NewClient(time.Second), srv.URL+"/")
	res, err := c.Classify(context.Background(), Submission{ImageName: "capture-1.jpg", ContentType: "image/jpeg", Image: []byte{0xff, 0xd8}})
	require.NoError(t, err)
	assert.Equal(t, "Early Blight", res.Label)
	assert.Equal(t, 91, res.ConfidencePercent)
}

func TestHTTPClassifier_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(DefaultResult())
	}))
	defer srv.Close()

	c := NewHTTPClassifier(khttp.NewClient(time.Second, khttp.WithRetries(2, time.Millisecond)), srv.URL)
	res, err := c.Classify(context.Background(), Submission{Symptoms: "yellow leaves"})
	require.NoError(t, err)
	assert.Equal(t, "Leaf Blight", res.Label)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPClassifier_RejectsBadConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label":"Rust","confidencePercent":140}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClassifier(khttp.NewClient(time.Second), srv.URL).Classify(context.Background(), Submission{Symptoms: "x"})
	assert.ErrorIs(t, err, ErrBadInference)
}

func TestStaticClassifier(t *testing.T) {
	res, err := StaticClassifier{}.Classify(context.Background(), Submission{})
	require.NoError(t, err)
	assert.Equal(t, 87, res.ConfidencePercent)
	assert.Len(t, res.RemediationSteps, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = StaticClassifier{}.Classify(ctx, Submission{})
	assert.ErrorIs(t, err, context.Canceled)
}
