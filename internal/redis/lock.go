package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func paymentLockKey(paymentID string) string {
	return fmt.Sprintf("lock:payment:%s", paymentID)
}

// AcquirePaymentLock attempts to acquire a lock for the given payment.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquirePaymentLock(ctx context.Context, paymentID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, paymentLockKey(paymentID), "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleasePaymentLock releases the lock for the given payment.
func (s *LockStore) ReleasePaymentLock(ctx context.Context, paymentID string) error {
	return s.client.Del(ctx, paymentLockKey(paymentID)).Err()
}
