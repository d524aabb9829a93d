package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquirePaymentLock(ctx context.Context, paymentID string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, paymentID string) error
}

// ListingCache defines the interface for listing read-through caching.
type ListingCache interface {
	GetListing(ctx context.Context, listingID string) (*CachedListing, error)
	SetListing(ctx context.Context, listing *CachedListing) error
	InvalidateListing(ctx context.Context, listingID string) error
}

// Queue defines the interface for a job queue.
type Queue interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface = (*LockStore)(nil)
	_ ListingCache       = (*CacheStore)(nil)
	_ Queue              = (*JobQueue)(nil)
)
