package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/certprep/internal/session"
)

const (
	DefaultTTL     = 24 * time.Hour
	redisKeyPrefix = "certprep:handoff:"
)

// RedisStore keeps hand-offs as JSON strings that expire after ttl.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, h session.Handoff) error {
	if h.AttemptID == "" {
		return errNoAttempt
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode handoff: %w", err)
	}
	return s.rdb.Set(ctx, redisKeyPrefix+h.AttemptID, data, s.ttl).Err()
}

func (s *RedisStore) Take(ctx context.Context, attemptID string) (session.Handoff, error) {
	var out session.Handoff
	data, err := s.rdb.GetDel(ctx, redisKeyPrefix+attemptID).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode handoff: %w", err)
	}
	return out, nil
}
