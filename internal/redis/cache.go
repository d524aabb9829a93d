package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// ListingCacheTTL bounds how stale a cached listing may get if an
// invalidation is lost.
const ListingCacheTTL = 60 * time.Second

const listingCachePrefix = "cache:listing:"

// CachedListing represents a cached listing entity.
type CachedListing struct {
	ID            string    `json:"id"`
	HostID        string    `json:"host_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PricePerNight string    `json:"price_per_night"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GetListing retrieves a listing from cache. Returns nil on a cache miss.
func (s *CacheStore) GetListing(ctx context.Context, listingID string) (*CachedListing, error) {
	data, err := s.client.Get(ctx, listingCachePrefix+listingID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var listing CachedListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// SetListing stores a listing in cache.
func (s *CacheStore) SetListing(ctx context.Context, listing *CachedListing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, listingCachePrefix+listing.ID, data, ListingCacheTTL).Err()
}

// InvalidateListing removes a listing from cache.
func (s *CacheStore) InvalidateListing(ctx context.Context, listingID string) error {
	return s.client.Del(ctx, listingCachePrefix+listingID).Err()
}
