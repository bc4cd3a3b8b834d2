package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"khetmitra-workers/internal/common/database"
	"khetmitra-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore is the persisted state the transcript lives in.
type KeyValueStore interface {
	// Get reports found=false for an absent key.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisKV stores values in Redis with an optional TTL.
type RedisKV struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisKV(client redis.Cmdable, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Store loads and saves one transcript per session under
// chat_messages:<session>.
type Store struct {
	kv     KeyValueStore
	logger logger.Logger
}

func NewStore(kv KeyValueStore, log logger.Logger) *Store {
	return &Store{kv: kv, logger: log}
}

func transcriptKey(sessionID string) string {
	return database.ChatKeyPrefix + sessionID
}

// Load returns the stored transcript, or the greeting when nothing usable
// is stored. Read and decode failures are logged and swallowed.
func (s *Store) Load(ctx context.Context, sessionID string) Transcript {
	raw, found, err := s.kv.Get(ctx, transcriptKey(sessionID))
	if err != nil {
		s.logger.Warn("transcript read failed, starting fresh", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return Greeting()
	}
	if !found {
		return Greeting()
	}
	t, ok := Decode(raw)
	if !ok {
		s.logger.Debug("discarding unreadable transcript", map[string]interface{}{"sessionId": sessionID})
		return Greeting()
	}
	return t
}

// Save overwrites the stored transcript.
func (s *Store) Save(ctx context.Context, sessionID string, t Transcript) error {
	raw, err := t.Encode()
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, transcriptKey(sessionID), raw); err != nil {
		return fmt.Errorf("save transcript for %s: %w", sessionID, err)
	}
	return nil
}

// Reset starts a new chat and persists it.
func (s *Store) Reset(ctx context.Context, sessionID string) (Transcript, error) {
	t := NewChat()
	return t, s.Save(ctx, sessionID, t)
}
