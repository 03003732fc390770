package postgres

import (
	"context"
	"database/sql"
	"errors"

	"travel/internal/domain"
	"travel/internal/repository"
)

// ReviewRepository is a PostgreSQL implementation of repository.ReviewRepository.
type ReviewRepository struct {
	q Querier
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{q: db}
}

const reviewColumns = `id, listing_id, guest_id, booking_id, rating, title, comment, is_verified, created_at`

// Create persists a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, listing_id, guest_id, booking_id, rating, title, comment, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		review.ID,
		review.ListingID,
		review.GuestID,
		review.BookingID,
		review.Rating,
		review.Title,
		review.Comment,
		review.IsVerified,
		review.CreatedAt,
	)

	return mapWriteError(err)
}

// GetByBookingID retrieves the review for a booking.
// Returns nil if the booking has no review.
func (r *ReviewRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE booking_id = $1`

	review, err := scanReview(r.q.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return review, nil
}

// ListByListing retrieves reviews of a listing.
func (r *ReviewRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE listing_id = $1 ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query, listingID)
	if isInvalidInput(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.ListingID,
		&review.GuestID,
		&review.BookingID,
		&review.Rating,
		&review.Title,
		&review.Comment,
		&review.IsVerified,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, mapReadError(err)
	}
	return &review, nil
}
