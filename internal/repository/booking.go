package repository

import (
	"context"
	"time"

	"travel/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListByGuest retrieves bookings made by a guest, newest first.
	ListByGuest(ctx context.Context, guestID string) ([]*domain.Booking, error)

	// ListByHost retrieves bookings on listings owned by a host, newest first.
	ListByHost(ctx context.Context, hostID string) ([]*domain.Booking, error)

	// TransitionStatus moves a booking to status `to` only if its current
	// status is one of `from`. Returns false if no row changed.
	// Returns ErrOverlap if confirming would overlap another confirmed booking.
	TransitionStatus(ctx context.Context, id string, to domain.BookingStatus, from ...domain.BookingStatus) (bool, error)

	// HasConfirmedOverlap reports whether a confirmed booking other than
	// excludeID overlaps [checkIn, checkOut) on the listing.
	HasConfirmedOverlap(ctx context.Context, listingID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
}
