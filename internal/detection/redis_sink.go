package detection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"khetmitra-workers/internal/common/database"

	"github.com/redis/go-redis/v9"
)

// RedisSink stores the latest snapshot per session under
// detection:progress:<session> so the page can poll it.
type RedisSink struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSink(client redis.Cmdable, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, ttl: ttl}
}

func progressKey(sessionID string) string {
	return database.ProgressKeyPrefix + sessionID
}

func (s *RedisSink) Publish(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, progressKey(snap.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for a session.
func (s *RedisSink) Latest(ctx context.Context, sessionID string) (Snapshot, bool, error) {
	raw, err := s.client.Get(ctx, progressKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}
