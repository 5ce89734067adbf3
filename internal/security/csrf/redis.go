package csrf

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore создаёт стор поверх Redis из URL
// (например, redis://:pass@host:6379/0). Если prefix пустой —
// используется "csrf:". Для multi-instance деплоя это единственный
// способ разделить CSRF-состояние между процессами.
func NewRedisStore(redisURL, prefix string) (Store, error) {
	if prefix == "" {
		prefix = "csrf:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *redisStore) key(k string) string { return s.prefix + k }

// Храним как Redis Hash с полями: tok, exp (unix).
func (s *redisStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	m, err := s.rdb.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(m) == 0 {
		return nil, false, nil
	}

	expUnix, err := strconv.ParseInt(m["exp"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	return &Entry{
		Token:     m["tok"],
		ExpiresAt: time.Unix(expUnix, 0).UTC(),
	}, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, e *Entry, ttl time.Duration) error {
	kv := map[string]string{
		"tok": e.Token,
		"exp": strconv.FormatInt(e.ExpiresAt.Unix(), 10),
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.key(key), kv)
	pipe.Expire(ctx, s.key(key), ttl)

	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

// Sweep — no-op: истечение обеспечивает TTL ключа в Redis.
func (s *redisStore) Sweep(context.Context, time.Time) error { return nil }

func (s *redisStore) Close() error { return s.rdb.Close() }
