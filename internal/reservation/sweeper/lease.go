package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultLeaseKey is the Redis key replicas compete for before sweeping.
const DefaultLeaseKey = "reservation:sweeper:lease"

// Lease elects one sweeping replica per tick. Losing the lease only skips a
// tick; correctness never depends on it.
type Lease interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// NoopLease always grants the lease.
type NoopLease struct{}

func (NoopLease) Acquire(context.Context, time.Duration) (bool, error) { return true, nil }
func (NoopLease) Release(context.Context) error                        { return nil }

// Takes the key when free, or extends it when this holder already owns it.
var acquireScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == ARGV[1] then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
	return 1
end
if current then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a single-key lease identified by a per-process token.
type RedisLease struct {
	client redis.Scripter
	key    string
	token  string
}

// NewRedisLease creates a lease on key. An empty key uses DefaultLeaseKey.
func NewRedisLease(client redis.Scripter, key string) *RedisLease {
	if key == "" {
		key = DefaultLeaseKey
	}
	return &RedisLease{client: client, key: key, token: uuid.NewString()}
}

func (l *RedisLease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	n, err := acquireScript.Run(ctx, l.client, []string{l.key}, l.token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("acquire sweeper lease: %w", err)
	}
	return n == 1, nil
}

func (l *RedisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release sweeper lease: %w", err)
	}
	return nil
}
