package staged

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "staged"
	maxRetries = 8
	scanBatch  = 100
)

// ErrConflict is returned when a state update keeps losing optimistic races.
var ErrConflict = errors.New("staged: too many concurrent updates")

// StateStore persists encoded table state.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	PurgeSession(ctx context.Context, sessionID string) error
}

// Key composes the state key of one view in one browser session.
func Key(sessionID string, view ...string) string {
	return strings.Join(append([]string{keyPrefix, sessionID}, view...), ":")
}

// RedisStore keeps view state in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore instantiates the store helper.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns the stored state or nil when none exists.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return payload, err
}

// Update runs fn against the current state inside a WATCH transaction and
// retries when another request wrote the key in between.
func (s *RedisStore) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		return err
	}
	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

// PurgeSession removes every view state of a browser session.
func (s *RedisStore) PurgeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	var cursor uint64
	match := Key(sessionID, "*")
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
