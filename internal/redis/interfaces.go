package redis

import (
	"context"
	"time"

	"travel/internal/domain"
)

// ListingCacheInterface defines the interface for listing read-through caching.
type ListingCacheInterface interface {
	GetListing(ctx context.Context, listingID string) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	InvalidateListing(ctx context.Context, listingID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireListingLock(ctx context.Context, listingID string, ttl time.Duration) (string, error)
	ReleaseListingLock(ctx context.Context, listingID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ ListingCacheInterface = (*CacheStore)(nil)
	_ LockStoreInterface    = (*LockStore)(nil)
)
