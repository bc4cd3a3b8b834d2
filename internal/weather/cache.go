package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"khetmitra-workers/internal/common/database"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// Service serves readings from a Redis cache and refreshes it from the
// Fetcher on a miss. A nil cache always goes to the Fetcher.
type Service struct {
	fetcher Fetcher
	cache   redis.Cmdable
	key     string
	ttl     time.Duration
	logger  logger.Logger
}

func NewService(fetcher Fetcher, cache redis.Cmdable, cacheKey string, ttl time.Duration, log logger.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		key:     database.WeatherKeyPrefix + cacheKey,
		ttl:     ttl,
		logger:  log,
	}
}

// CacheKeyFor names the cache entry for a coordinate pair.
func CacheKeyFor(latitude, longitude float64) string {
	return fmt.Sprintf("%.4f,%.4f", latitude, longitude)
}

// Current returns the reading and whether it came from the cache. Cache
// errors are logged and treated as a miss.
func (s *Service) Current(ctx context.Context) (Reading, bool, error) {
	if r, ok := s.lookup(ctx); ok {
		return r, true, nil
	}

	r, err := s.fetcher.Current(ctx)
	if err != nil {
		return Reading{}, false, err
	}
	s.store(ctx, r)
	return r, false, nil
}

// Report is the assistant reply for a weather question. It never fails.
func (s *Service) Report(ctx context.Context) string {
	r, _, err := s.Current(ctx)
	if err != nil {
		s.logger.Warn("weather lookup failed", map[string]interface{}{"error": err.Error()})
		return FallbackMessage(err)
	}
	return r.Message()
}

func (s *Service) lookup(ctx context.Context) (Reading, bool) {
	if s.cache == nil {
		return Reading{}, false
	}
	raw, err := s.cache.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.WeatherCacheLookups.WithLabelValues("miss").Inc()
		return Reading{}, false
	}
	if err != nil {
		metrics.WeatherCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("weather cache read failed", map[string]interface{}{"key": s.key, "error": err.Error()})
		return Reading{}, false
	}

	var r Reading
	if err := json.Unmarshal(raw, &r); err != nil {
		metrics.WeatherCacheLookups.WithLabelValues("error").Inc()
		return Reading{}, false
	}
	metrics.WeatherCacheLookups.WithLabelValues("hit").Inc()
	return r, true
}

func (s *Service) store(ctx context.Context, r Reading) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("weather cache write failed", map[string]interface{}{"key": s.key, "error": err.Error()})
	}
}
