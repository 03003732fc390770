package redis

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"travel/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// ListingCacheTTL bounds staleness for readers that miss an invalidation.
const ListingCacheTTL = 5 * time.Minute

const listingCachePrefix = "cache:listing:"

// CachedListing represents a cached listing entity.
type CachedListing struct {
	ID            string          `json:"id"`
	HostID        string          `json:"host_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	MaxGuests     int             `json:"max_guests"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	Amenities     []string        `json:"amenities"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// GetListing retrieves a listing from cache. Returns nil on a cache miss.
func (s *CacheStore) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	data, err := s.client.Get(ctx, listingCachePrefix+listingID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cached CachedListing
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &domain.Listing{
		ID:            cached.ID,
		HostID:        cached.HostID,
		Title:         cached.Title,
		Description:   cached.Description,
		Location:      cached.Location,
		PricePerNight: cached.PricePerNight,
		MaxGuests:     cached.MaxGuests,
		Bedrooms:      cached.Bedrooms,
		Bathrooms:     cached.Bathrooms,
		Amenities:     cached.Amenities,
		IsActive:      cached.IsActive,
		CreatedAt:     cached.CreatedAt,
		UpdatedAt:     cached.UpdatedAt,
	}, nil
}

// SetListing stores a listing in cache.
func (s *CacheStore) SetListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(CachedListing{
		ID:            listing.ID,
		HostID:        listing.HostID,
		Title:         listing.Title,
		Description:   listing.Description,
		Location:      listing.Location,
		PricePerNight: listing.PricePerNight,
		MaxGuests:     listing.MaxGuests,
		Bedrooms:      listing.Bedrooms,
		Bathrooms:     listing.Bathrooms,
		Amenities:     listing.Amenities,
		IsActive:      listing.IsActive,
		CreatedAt:     listing.CreatedAt,
		UpdatedAt:     listing.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, listingCachePrefix+listing.ID, data, ListingCacheTTL).Err()
}

// InvalidateListing removes a listing from cache.
func (s *CacheStore) InvalidateListing(ctx context.Context, listingID string) error {
	return s.client.Del(ctx, listingCachePrefix+listingID).Err()
}
