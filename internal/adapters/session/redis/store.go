package redis

import (
	"context"
	"errors"
	"time"

	"far-fetched/internal/ports/session"

	goredis "github.com/redis/go-redis/v9"
)

// Store implementa session.Store sobre Redis.
// Una clave por (sesión, key): "sess:<sid>:<key>", con TTL propio.
type Store struct {
	rdb *goredis.Client
}

var _ session.Store = (*Store)(nil)

func New(addr, password string, db int) *Store {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	return &Store{rdb: rdb}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, redisKey(sessionID, key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, redisKey(sessionID, key), value, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, sessionID, key string) error {
	return s.rdb.Del(ctx, redisKey(sessionID, key)).Err()
}

func redisKey(sessionID, key string) string {
	return "sess:" + sessionID + ":" + key
}
