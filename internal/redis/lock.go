package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func listingLockKey(listingID string) string {
	return fmt.Sprintf("lock:listing:%s", listingID)
}

// AcquireListingLock attempts to acquire the booking-confirmation lock for a listing.
// It returns the holder's token, or "" if the lock is already held.
func (s *LockStore) AcquireListingLock(ctx context.Context, listingID string, ttl time.Duration) (string, error) {
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, listingLockKey(listingID), token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	return token, nil
}

// ReleaseListingLock releases the lock if token still holds it. A lock that
// expired and was taken by another caller is left alone.
func (s *LockStore) ReleaseListingLock(ctx context.Context, listingID, token string) error {
	return releaseScript.Run(ctx, s.client, []string{listingLockKey(listingID)}, token).Err()
}
