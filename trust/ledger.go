package trust

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix matches the ledger key layout consumed by the engine:
// prefix + username + deviceID.
const DefaultKeyPrefix = "trusted-device:"

// ErrUnavailable wraps transport failures against the ledger backend.
var ErrUnavailable = errors.New("trust ledger unavailable")

// Ledger records currently-trusted (username, device) pairs. It is a
// read-through accelerator: the authoritative trusted-device identifier
// lives on the account record, and correctness never depends on an entry
// being present here.
type Ledger interface {
	Get(ctx context.Context, username, deviceID string) (string, error)
	Set(ctx context.Context, username, deviceID string) error
	Remove(ctx context.Context, username, deviceID string) error
	Exists(ctx context.Context, username, deviceID string) (bool, error)
}

// RedisLedger is the default Ledger over a Redis key space. Entries carry
// the device id as value; only key presence is meaningful.
type RedisLedger struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLedger returns a ledger over client. An empty prefix falls back
// to DefaultKeyPrefix; a zero ttl stores entries without expiry.
func NewRedisLedger(client *redis.Client, prefix string, ttl time.Duration) *RedisLedger {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisLedger{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (l *RedisLedger) key(username, deviceID string) string {
	return l.prefix + username + deviceID
}

// Get returns the stored value for (username, deviceID), or "" when the
// pair is not trusted.
func (l *RedisLedger) Get(ctx context.Context, username, deviceID string) (string, error) {
	val, err := l.redis.Get(ctx, l.key(username, deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

// Set marks (username, deviceID) as trusted.
func (l *RedisLedger) Set(ctx context.Context, username, deviceID string) error {
	if err := l.redis.Set(ctx, l.key(username, deviceID), deviceID, l.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Remove drops the entry for (username, deviceID). Removing an absent
// entry is not an error.
func (l *RedisLedger) Remove(ctx context.Context, username, deviceID string) error {
	if err := l.redis.Del(ctx, l.key(username, deviceID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Exists reports whether (username, deviceID) has a ledger entry.
func (l *RedisLedger) Exists(ctx context.Context, username, deviceID string) (bool, error) {
	n, err := l.redis.Exists(ctx, l.key(username, deviceID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}
