package searchlistings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/market"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearcher(t *testing.T, status int, body string) *market.Searcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{srv.URL},
		DisableRetry: true,
	})
	require.NoError(t, err)
	return market.NewSearcher(es, market.DefaultIndex, logger.NewNoOpLogger())
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		input          *Input
		validateOutput func(t *testing.T, out *Output)
	}{
		{
			name:   "index hit",
			status: http.StatusOK,
			body:   `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":9,"title":"Basmati Rice (25kg)","priceINR":"₹2,400","location":"Karnal","image":"/rice.jpg"}}]}}`,
			input:  &Input{Query: "rice"},
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, market.SourceSearch, out.Source)
				assert.False(t, out.Degraded)
				require.Len(t, out.Listings, 1)
				assert.Equal(t, "Karnal", out.Listings[0].Location)
			},
		},
		{
			name:   "cluster unavailable serves static listings",
			status: http.StatusInternalServerError,
			body:   `{"error":"boom"}`,
			input:  &Input{},
			validateOutput: func(t *testing.T, out *Output) {
				assert.True(t, out.Degraded)
				assert.Equal(t, market.StaticListings(), out.Listings)
				assert.Equal(t, int64(2), out.Total)
			},
		},
		{
			name:   "fallback honours the query",
			status: http.StatusInternalServerError,
			body:   `{"error":"boom"}`,
			input:  &Input{Query: "tomato"},
			validateOutput: func(t *testing.T, out *Output) {
				require.Len(t, out.Listings, 1)
				assert.Equal(t, "Nashik", out.Listings[0].Location)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&Config{Timeout: time.Second}, newSearcher(t, tt.status, tt.body), logger.NewTestLogger(t))
			tt.validateOutput(t, h.Execute(context.Background(), tt.input))
		})
	}
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputValidator.ValidateJSON([]byte(`{}`)).Valid)
	assert.True(t, inputValidator.ValidateJSON([]byte(`{"query":"onion","size":10}`)).Valid)
	assert.False(t, inputValidator.ValidateJSON([]byte(`{"size":500}`)).Valid)
	assert.False(t, inputValidator.ValidateJSON([]byte(`{"from":-1}`)).Valid)
}
