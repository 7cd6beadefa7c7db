package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// lockValue is written as the body of the Redis key. Every holder writes the
// same constant and Unlock does not compare it: Unlock deletes the key
// whoever holds it, including a lock another process acquired after this
// one's TTL expired.
const lockValue = "held"

// Lock is the Scheduler's cross-process distributed lock, backed by Redis'
// SET NX EX primitive. It satisfies modules/scheduler.Locker.
type Lock struct {
	client *Client
}

func NewLock(client *Client) *Lock {
	return &Lock{client: client}
}

// TryLock attempts to acquire key for ttl via SET key value NX EX ttl.
func (l *Lock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, lockValue, ttl).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return false, err
	}
	return ok, nil
}

// Unlock deletes the key. Best-effort: if the lock already expired, the
// delete is a harmless no-op.
func (l *Lock) Unlock(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}
