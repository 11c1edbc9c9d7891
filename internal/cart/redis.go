package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL bounds how long an abandoned cart survives in redis.
const DefaultTTL = 12 * time.Hour

const (
	// lockTTL frees the lock of an instance that died mid checkout.
	lockTTL       = 30 * time.Second
	lockWait      = 10 * time.Second
	lockRetryStep = 20 * time.Millisecond
)

// unlockScript deletes the lock only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps each cart as a redis list so several API instances can
// serve the same terminal.
type RedisStore struct {
	Client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{Client: client, ttl: ttl}
}

func (s *RedisStore) Read(ctx context.Context, key Key) ([]string, error) {
	names, err := s.Client.LRange(ctx, key.String(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("s.Client.LRange -> %w", err)
	}

	return names, nil
}

func (s *RedisStore) Append(ctx context.Context, key Key, name string) error {
	k := key.String()

	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, name)
		pipe.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("s.Client.TxPipelined -> %w", err)
	}

	return nil
}

func (s *RedisStore) PopLast(ctx context.Context, key Key) error {
	err := s.Client.RPop(ctx, key.String()).Err()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("s.Client.RPop -> %w", err)
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key Key) error {
	if err := s.Client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("s.Client.Del -> %w", err)
	}

	return nil
}

func (s *RedisStore) TrimFront(ctx context.Context, key Key, n int) error {
	if n <= 0 {
		return nil
	}

	// LTRIM past the end removes the key.
	if err := s.Client.LTrim(ctx, key.String(), int64(n), -1).Err(); err != nil {
		return fmt.Errorf("s.Client.LTrim -> %w", err)
	}

	return nil
}

// Lock takes "lock:<cart key>" with SET NX, retrying until lockWait has passed.
func (s *RedisStore) Lock(ctx context.Context, key Key) (func(), error) {
	lockKey := "lock:" + key.String()
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	ticker := time.NewTicker(lockRetryStep)
	defer ticker.Stop()

	for {
		ok, err := s.Client.SetNX(ctx, lockKey, token, lockTTL).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("s.Client.SetNX -> %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrBusy, ctx.Err())
		}
	}

	return func() {
		// the request context may already be gone
		if err := unlockScript.Run(context.Background(), s.Client, []string{lockKey}, token).Err(); err != nil {
			zap.L().Warn("failed to release cart lock", zap.String("lock", lockKey), zap.Error(err))
		}
	}, nil
}
