package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockStore_AcquireAndRelease(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewLockStore(client)
	ctx := context.Background()

	mock.ExpectSetNX("lock:payment:pay-1", "1", time.Minute).SetVal(true)
	mock.ExpectSetNX("lock:payment:pay-1", "1", time.Minute).SetVal(false)
	mock.ExpectDel("lock:payment:pay-1").SetVal(1)

	ok, err := store.AcquirePaymentLock(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AcquirePaymentLock(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while the lock is held")

	require.NoError(t, store.ReleasePaymentLock(ctx, "pay-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockStore_AcquireError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewLockStore(client)

	mock.ExpectSetNX("lock:payment:pay-1", "1", time.Second).SetErr(errors.New("connection refused"))

	ok, err := store.AcquirePaymentLock(context.Background(), "pay-1", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCacheStore_ListingRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewCacheStore(client)
	ctx := context.Background()

	listing := &CachedListing{
		ID:            "listing-1",
		HostID:        "host-1",
		Title:         "Lakeside cabin",
		PricePerNight: "100.00",
	}
	data, err := json.Marshal(listing)
	require.NoError(t, err)

	mock.ExpectGet("cache:listing:listing-1").RedisNil()
	mock.ExpectSet("cache:listing:listing-1", data, ListingCacheTTL).SetVal("OK")
	mock.ExpectGet("cache:listing:listing-1").SetVal(string(data))
	mock.ExpectDel("cache:listing:listing-1").SetVal(1)

	miss, err := store.GetListing(ctx, "listing-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, store.SetListing(ctx, listing))

	hit, err := store.GetListing(ctx, "listing-1")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Lakeside cabin", hit.Title)
	assert.Equal(t, "100.00", hit.PricePerNight)

	require.NoError(t, store.InvalidateListing(ctx, "listing-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobQueue_PushAndPop(t *testing.T) {
	client, mock := redismock.NewClientMock()
	queue := NewJobQueue(client, EmailQueueKey)
	ctx := context.Background()

	payload := []byte(`{"booking_id":"b-1"}`)

	mock.ExpectLPush(EmailQueueKey, payload).SetVal(1)
	mock.ExpectBRPop(time.Second, EmailQueueKey).SetVal([]string{EmailQueueKey, string(payload)})

	require.NoError(t, queue.Push(ctx, payload))

	got, err := queue.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobQueue_PopTimeoutReturnsNil(t *testing.T) {
	client, mock := redismock.NewClientMock()
	queue := NewJobQueue(client, EmailQueueKey)

	mock.ExpectBRPop(time.Second, EmailQueueKey).RedisNil()

	got, err := queue.Pop(context.Background(), time.Second)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
