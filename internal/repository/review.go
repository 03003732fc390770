package repository

import (
	"context"

	"travel/internal/domain"
)

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	// Create persists a new review. Returns ErrDuplicate if the booking
	// already has a review.
	Create(ctx context.Context, review *domain.Review) error

	// GetByBookingID retrieves the review for a booking.
	// Returns nil if the booking has no review.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Review, error)

	// ListByListing retrieves reviews of a listing, newest first.
	ListByListing(ctx context.Context, listingID string) ([]*domain.Review, error)
}
