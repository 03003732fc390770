package repository

import "context"

// Stores groups the repositories that share a transaction.
type Stores struct {
	Listings ListingRepository
	Bookings BookingRepository
	Payments PaymentRepository
}

// Transactor runs fn inside a single database transaction. The transaction
// commits if fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
