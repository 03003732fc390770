package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"travel/internal/domain"
	"travel/internal/redis"
	"travel/internal/repository"
)

// ListingService handles listing operations.
type ListingService struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	cache       redis.ListingCacheInterface
	logger      *zap.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	cache redis.ListingCacheInterface,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		cache:       cache,
		logger:      logger,
	}
}

// CreateListingRequest contains the parameters for creating a listing.
type CreateListingRequest struct {
	HostID        string
	Title         string
	Description   string
	Location      string
	PricePerNight decimal.Decimal
	MaxGuests     int
	Bedrooms      int
	Bathrooms     int
	Amenities     []string
}

// UpdateListingRequest contains the fields to change. Nil fields are left as is.
type UpdateListingRequest struct {
	Title         *string
	Description   *string
	Location      *string
	PricePerNight *decimal.Decimal
	MaxGuests     *int
	Bedrooms      *int
	Bathrooms     *int
	Amenities     []string
}

// Create creates a new active listing owned by the host.
func (s *ListingService) Create(ctx context.Context, req CreateListingRequest) (*domain.Listing, error) {
	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:            uuid.New().String(),
		HostID:        req.HostID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Location:      strings.TrimSpace(req.Location),
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Amenities:     normalizeAmenities(req.Amenities),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := validateListing(listing); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, req.HostID); err != nil {
		return nil, err
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

// Get retrieves an active listing, served from cache when possible.
func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	cached, err := s.cache.GetListing(ctx, id)
	if err != nil {
		s.logger.Warn("listing cache read failed", zap.String("listing_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !listing.IsActive {
		return nil, ErrNotFound
	}

	if err := s.cache.SetListing(ctx, listing); err != nil {
		s.logger.Warn("listing cache write failed", zap.String("listing_id", id), zap.Error(err))
	}

	return listing, nil
}

// List retrieves active listings matching the filter.
func (s *ListingService) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	if filter.MinPrice.Valid && filter.MaxPrice.Valid && filter.MinPrice.Decimal.GreaterThan(filter.MaxPrice.Decimal) {
		return nil, newError(ErrValidation, "min_price must not exceed max_price")
	}
	return s.listingRepo.List(ctx, filter)
}

// Update changes a listing's fields. Only the host may update.
func (s *ListingService) Update(ctx context.Context, id, actorID string, req UpdateListingRequest) (*domain.Listing, error) {
	listing, err := s.ownedListing(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		listing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Location != nil {
		listing.Location = strings.TrimSpace(*req.Location)
	}
	if req.PricePerNight != nil {
		listing.PricePerNight = *req.PricePerNight
	}
	if req.MaxGuests != nil {
		listing.MaxGuests = *req.MaxGuests
	}
	if req.Bedrooms != nil {
		listing.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		listing.Bathrooms = *req.Bathrooms
	}
	if req.Amenities != nil {
		listing.Amenities = normalizeAmenities(req.Amenities)
	}

	if err := validateListing(listing); err != nil {
		return nil, err
	}

	listing.UpdatedAt = time.Now().UTC()
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return listing, nil
}

// Deactivate hides a listing from search and new bookings. Only the host may deactivate.
func (s *ListingService) Deactivate(ctx context.Context, id, actorID string) error {
	if _, err := s.ownedListing(ctx, id, actorID); err != nil {
		return err
	}

	if err := s.listingRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *ListingService) ownedListing(ctx context.Context, id, actorID string) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !listing.IsActive {
		return nil, ErrNotFound
	}

	if listing.HostID != actorID {
		return nil, ErrNotListingHost
	}

	return listing, nil
}

func (s *ListingService) invalidate(ctx context.Context, id string) {
	if err := s.cache.InvalidateListing(ctx, id); err != nil {
		s.logger.Warn("listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}

func validateListing(listing *domain.Listing) error {
	if listing.Title == "" || listing.Location == "" {
		return ErrMissingListingFields
	}
	if !listing.PricePerNight.IsPositive() {
		return ErrInvalidPrice
	}
	if listing.MaxGuests <= 0 {
		return ErrInvalidMaxGuests
	}
	if listing.Bedrooms < 0 || listing.Bathrooms < 0 {
		return newError(ErrValidation, "bedrooms and bathrooms must not be negative")
	}
	return nil
}

func normalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
