package repository

import (
	"context"
	"time"

	"travel/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment. Returns ErrDuplicate if the booking
	// already has a non-failed payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByReference retrieves a payment by its payment reference.
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)

	// GetActiveByBookingID retrieves the non-failed payment for a booking.
	// Returns nil if no such payment exists.
	GetActiveByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)

	// ListByGuest retrieves payments for bookings made by a guest, newest first.
	ListByGuest(ctx context.Context, guestID string) ([]*domain.Payment, error)

	// RecordVerificationAttempt increments the verification counter.
	RecordVerificationAttempt(ctx context.Context, reference string, at time.Time) error

	// Transition applies t only if the payment is still pending.
	// Returns false if the payment was no longer pending.
	Transition(ctx context.Context, t domain.PaymentTransition) (bool, error)
}
