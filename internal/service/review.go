package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"travel/internal/domain"
	"travel/internal/repository"
)

// ReviewService handles review operations.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	bookingRepo repository.BookingRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo repository.ReviewRepository, bookingRepo repository.BookingRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		bookingRepo: bookingRepo,
	}
}

// CreateReviewRequest contains the parameters for creating a review.
type CreateReviewRequest struct {
	ListingID string
	BookingID string
	GuestID   string
	Rating    int
	Title     string
	Comment   string
}

// Create records a guest's review of a completed booking.
func (s *ReviewService) Create(ctx context.Context, req CreateReviewRequest) (*domain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.ListingID != req.ListingID {
		return nil, ErrReviewListingMismatch
	}

	if booking.Status != domain.BookingStatusCompleted || booking.GuestID != req.GuestID {
		return nil, ErrReviewNotAllowed
	}

	existing, err := s.reviewRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, ErrReviewExists
	}

	review := &domain.Review{
		ID:         uuid.New().String(),
		ListingID:  booking.ListingID,
		GuestID:    booking.GuestID,
		BookingID:  booking.ID,
		Rating:     req.Rating,
		Title:      strings.TrimSpace(req.Title),
		Comment:    strings.TrimSpace(req.Comment),
		IsVerified: true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	return review, nil
}

// ListByListing retrieves reviews of a listing.
func (s *ReviewService) ListByListing(ctx context.Context, listingID string) ([]*domain.Review, error) {
	if listingID == "" {
		return nil, newError(ErrValidation, "listing_id is required")
	}
	return s.reviewRepo.ListByListing(ctx, listingID)
}
