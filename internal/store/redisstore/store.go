package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginFailPrefix = "login_fail:"
	failWindow      = 15 * time.Minute
	maxFailures     = 5
)

// Store tracks failed-login counters with a TTL window so repeated bad
// credentials lock a username out for a while.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// RecordFailure bumps the failure counter for a username and returns the
// new count. The window TTL is refreshed on every failure.
func (s *Store) RecordFailure(ctx context.Context, username string) (int64, error) {
	key := loginFailPrefix + username
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if err := s.rdb.Expire(ctx, key, failWindow).Err(); err != nil {
		return n, err
	}
	return n, nil
}

// IsLocked reports whether the username has exceeded the failure budget.
func (s *Store) IsLocked(ctx context.Context, username string) (bool, error) {
	n, err := s.rdb.Get(ctx, loginFailPrefix+username).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= maxFailures, nil
}

// ClearFailures resets the counter after a successful login.
func (s *Store) ClearFailures(ctx context.Context, username string) error {
	return s.rdb.Del(ctx, loginFailPrefix+username).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
