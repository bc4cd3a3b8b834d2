package fetchweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	khttp "khetmitra-workers/internal/common/http"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/weather"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, body string, status int) (*weather.Service, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	client := weather.NewClient(khttp.NewClient(time.Second), srv.URL, weather.DefaultLatitude, weather.DefaultLongitude)
	key := weather.CacheKeyFor(client.Location())
	return weather.NewService(client, rdb, key, time.Minute, logger.NewNoOpLogger()), &calls
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		status         int
		validateOutput func(t *testing.T, out *Output)
	}{
		{
			name:   "reading available",
			body:   `{"current_weather":{"temperature":31.5,"windspeed":12,"weathercode":2}}`,
			status: http.StatusOK,
			validateOutput: func(t *testing.T, out *Output) {
				assert.True(t, out.Available)
				assert.Equal(t, 31.5, out.Temperature)
				assert.Equal(t, 2, out.WeatherCode)
				assert.Equal(t, "Today's weather: Temperature : 31.5°C, Wind Speed : 12 km/h, Weather Code : 2", out.Message)
			},
		},
		{
			name:   "no current block",
			body:   `{}`,
			status: http.StatusOK,
			validateOutput: func(t *testing.T, out *Output) {
				assert.False(t, out.Available)
				assert.Equal(t, weather.MsgUnavailable, out.Message)
			},
		},
		{
			name:   "provider error",
			body:   `{"error":true}`,
			status: http.StatusInternalServerError,
			validateOutput: func(t *testing.T, out *Output) {
				assert.False(t, out.Available)
				assert.Equal(t, weather.MsgFetchFailed, out.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t, tt.body, tt.status)
			h := NewHandler(&Config{Timeout: time.Second}, svc, logger.NewTestLogger(t))
			tt.validateOutput(t, h.Execute(context.Background(), &Input{SessionID: "s1"}))
		})
	}
}

func TestHandler_Execute_SecondCallIsCached(t *testing.T) {
	svc, calls := newService(t, `{"current_weather":{"temperature":20,"windspeed":5,"weathercode":0}}`, http.StatusOK)
	h := NewHandler(&Config{Timeout: time.Second}, svc, logger.NewTestLogger(t))

	first := h.Execute(context.Background(), &Input{})
	second := h.Execute(context.Background(), &Input{})

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}
