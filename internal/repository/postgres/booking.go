package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"travel/internal/domain"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `b.id, b.listing_id, b.guest_id, b.check_in_date, b.check_out_date, b.number_of_guests,
	b.status, b.total_price, b.special_requests, b.created_at, b.updated_at`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, listing_id, guest_id, check_in_date, check_out_date, number_of_guests,
			status, total_price, special_requests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.ListingID,
		booking.GuestID,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.NumberOfGuests,
		booking.Status,
		booking.TotalPrice,
		booking.SpecialRequests,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	return mapWriteError(err)
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`
	return scanBooking(r.q.QueryRowContext(ctx, query, id))
}

// ListByGuest retrieves bookings made by a guest.
func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.guest_id = $1 ORDER BY b.created_at DESC LIMIT 100`
	return r.list(ctx, query, guestID)
}

// ListByHost retrieves bookings on listings owned by a host.
func (r *BookingRepository) ListByHost(ctx context.Context, hostID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b JOIN listings l ON l.id = b.listing_id
		WHERE l.host_id = $1
		ORDER BY b.created_at DESC LIMIT 100
	`
	return r.list(ctx, query, hostID)
}

// TransitionStatus moves a booking to `to` if its status is one of `from`.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id string, to domain.BookingStatus, from ...domain.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`

	expected := make([]string, len(from))
	for i, s := range from {
		expected[i] = string(s)
	}

	result, err := r.q.ExecContext(ctx, query, to, id, pq.Array(expected))
	if err != nil {
		return false, mapWriteError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// HasConfirmedOverlap reports whether another confirmed booking overlaps the range.
func (r *BookingRepository) HasConfirmedOverlap(ctx context.Context, listingID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE listing_id = $1
				AND status = 'confirmed'
				AND check_in_date < $3
				AND $2 < check_out_date
				AND id::text <> $4
		)
	`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, listingID, checkIn, checkOut, excludeID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if isInvalidInput(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	err := row.Scan(
		&booking.ID,
		&booking.ListingID,
		&booking.GuestID,
		&booking.CheckInDate,
		&booking.CheckOutDate,
		&booking.NumberOfGuests,
		&booking.Status,
		&booking.TotalPrice,
		&booking.SpecialRequests,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadError(err)
	}
	return &booking, nil
}
