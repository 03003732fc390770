package repository

import (
	"context"

	"travel/internal/domain"
)

// ListingRepository defines the persistence operations for listings.
type ListingRepository interface {
	// Create persists a new listing.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by ID, active or not.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// GetForUpdate retrieves a listing and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Listing, error)

	// List retrieves active listings matching the filter, newest first.
	List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error)

	// Update overwrites the mutable fields of a listing.
	Update(ctx context.Context, listing *domain.Listing) error

	// Deactivate marks a listing inactive.
	Deactivate(ctx context.Context, id string) error
}
