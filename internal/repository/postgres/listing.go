package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"travel/internal/domain"
	"travel/internal/repository"
)

// ListingRepository is a PostgreSQL implementation of repository.ListingRepository.
type ListingRepository struct {
	q Querier
}

// NewListingRepository creates a new PostgreSQL listing repository.
func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{q: db}
}

// NewListingRepositoryWithTx creates a listing repository using a transaction.
func NewListingRepositoryWithTx(tx *sql.Tx) *ListingRepository {
	return &ListingRepository{q: tx}
}

const listingColumns = `id, host_id, title, description, location, price_per_night, max_guests,
	bedrooms, bathrooms, amenities, is_active, created_at, updated_at`

// Create persists a new listing.
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
		INSERT INTO listings (id, host_id, title, description, location, price_per_night, max_guests,
			bedrooms, bathrooms, amenities, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		listing.ID,
		listing.HostID,
		listing.Title,
		listing.Description,
		listing.Location,
		listing.PricePerNight,
		listing.MaxGuests,
		listing.Bedrooms,
		listing.Bathrooms,
		pq.Array(listing.Amenities),
		listing.IsActive,
		listing.CreatedAt,
		listing.UpdatedAt,
	)

	return mapWriteError(err)
}

// GetByID retrieves a listing by ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return scanListing(r.q.QueryRowContext(ctx, query, id))
}

// GetForUpdate retrieves a listing with a row lock.
func (r *ListingRepository) GetForUpdate(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`
	return scanListing(r.q.QueryRowContext(ctx, query, id))
}

// List retrieves active listings matching the filter.
func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	var (
		conditions = []string{"is_active = TRUE"}
		args       []any
	)

	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if filter.MinPrice.Valid {
		args = append(args, filter.MinPrice.Decimal)
		conditions = append(conditions, fmt.Sprintf("price_per_night >= $%d", len(args)))
	}
	if filter.MaxPrice.Valid {
		args = append(args, filter.MaxPrice.Decimal)
		conditions = append(conditions, fmt.Sprintf("price_per_night <= $%d", len(args)))
	}
	if filter.HostID != "" {
		args = append(args, filter.HostID)
		conditions = append(conditions, fmt.Sprintf("host_id = $%d", len(args)))
	}

	query := `SELECT ` + listingColumns + ` FROM listings WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if isInvalidInput(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}

// Update overwrites the mutable fields of a listing.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	query := `
		UPDATE listings
		SET title = $1, description = $2, location = $3, price_per_night = $4, max_guests = $5,
			bedrooms = $6, bathrooms = $7, amenities = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		listing.Title,
		listing.Description,
		listing.Location,
		listing.PricePerNight,
		listing.MaxGuests,
		listing.Bedrooms,
		listing.Bathrooms,
		pq.Array(listing.Amenities),
		listing.UpdatedAt,
		listing.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}

	return requireRow(result)
}

// Deactivate marks a listing inactive.
func (r *ListingRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE listings SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return mapReadError(err)
	}

	return requireRow(result)
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var listing domain.Listing
	err := row.Scan(
		&listing.ID,
		&listing.HostID,
		&listing.Title,
		&listing.Description,
		&listing.Location,
		&listing.PricePerNight,
		&listing.MaxGuests,
		&listing.Bedrooms,
		&listing.Bathrooms,
		pq.Array(&listing.Amenities),
		&listing.IsActive,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadError(err)
	}
	return &listing, nil
}

// requireRow returns repository.ErrNotFound if no row was affected.
func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
