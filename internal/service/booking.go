package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"travel/internal/domain"
	"travel/internal/redis"
	"travel/internal/repository"
)

// listingLockTTL bounds how long a crashed confirm can block a listing.
const listingLockTTL = 10 * time.Second

// BookingRole selects which side of a booking a listing query is for.
type BookingRole string

const (
	BookingRoleGuest BookingRole = "guest"
	BookingRoleHost  BookingRole = "host"
)

// BookingService handles booking operations.
type BookingService struct {
	tx          repository.Transactor
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	lockStore   redis.LockStoreInterface
	logger      *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	tx repository.Transactor,
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	lockStore redis.LockStoreInterface,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:          tx,
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		lockStore:   lockStore,
		logger:      logger,
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
type CreateBookingRequest struct {
	ListingID       string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	NumberOfGuests  int
	SpecialRequests string
}

// Create creates a pending booking priced at nights × price_per_night.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	nights := domain.Nights(req.CheckIn, req.CheckOut)
	if nights < 1 {
		return nil, ErrInvalidDates
	}

	if req.NumberOfGuests < 1 {
		return nil, ErrInvalidGuestCount
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	if !listing.IsActive {
		return nil, ErrListingInactive
	}

	if req.NumberOfGuests > listing.MaxGuests {
		return nil, ErrCapacityExceeded
	}

	overlap, err := s.bookingRepo.HasConfirmedOverlap(ctx, listing.ID, req.CheckIn, req.CheckOut, "")
	if err != nil {
		return nil, err
	}

	if overlap {
		return nil, ErrBookingOverlap
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:              uuid.New().String(),
		ListingID:       listing.ID,
		GuestID:         req.GuestID,
		CheckInDate:     req.CheckIn,
		CheckOutDate:    req.CheckOut,
		NumberOfGuests:  req.NumberOfGuests,
		Status:          domain.BookingStatusPending,
		TotalPrice:      listing.PricePerNight.Mul(decimal.NewFromInt(int64(nights))),
		SpecialRequests: req.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// Get retrieves a booking visible to the actor.
func (s *BookingService) Get(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	booking, listing, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if actorID != booking.GuestID && actorID != listing.HostID {
		return nil, ErrNotBookingParty
	}

	return booking, nil
}

// List retrieves the actor's bookings as guest or as host.
func (s *BookingService) List(ctx context.Context, actorID string, role BookingRole) ([]*domain.Booking, error) {
	switch role {
	case BookingRoleGuest, "":
		return s.bookingRepo.ListByGuest(ctx, actorID)
	case BookingRoleHost:
		return s.bookingRepo.ListByHost(ctx, actorID)
	default:
		return nil, newError(ErrValidation, "role must be guest or host")
	}
}

// Confirm transitions a pending booking to confirmed. Only the listing host
// may confirm. The overlap check and the update share a transaction that
// holds the listing row lock.
func (s *BookingService) Confirm(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	booking, listing, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if actorID != listing.HostID {
		return nil, ErrNotListingHost
	}

	if booking.Status != domain.BookingStatusPending {
		return nil, ErrBookingNotPending
	}

	token, err := s.lockStore.AcquireListingLock(ctx, listing.ID, listingLockTTL)
	if err != nil {
		// Postgres still serializes on the listing row.
		s.logger.Warn("listing lock unavailable", zap.String("listing_id", listing.ID), zap.Error(err))
	} else if token == "" {
		return nil, ErrListingLocked
	} else {
		defer func() {
			if err := s.lockStore.ReleaseListingLock(context.WithoutCancel(ctx), listing.ID, token); err != nil {
				s.logger.Warn("failed to release listing lock", zap.String("listing_id", listing.ID), zap.Error(err))
			}
		}()
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		return confirmBooking(ctx, stores, booking)
	})
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatusConfirmed
	s.logger.Info("booking confirmed", zap.String("booking_id", booking.ID), zap.String("listing_id", listing.ID))
	return booking, nil
}

// Cancel transitions a pending or confirmed booking to cancelled. The guest
// or the listing host may cancel.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	booking, listing, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if actorID != booking.GuestID && actorID != listing.HostID {
		return nil, ErrNotBookingParty
	}

	if err := cancellable(booking.Status); err != nil {
		return nil, err
	}

	changed, err := s.bookingRepo.TransitionStatus(ctx, booking.ID, domain.BookingStatusCancelled,
		domain.BookingStatusPending, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}

	if !changed {
		// Lost a race; report against the status that won.
		current, err := s.bookingRepo.GetByID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if err := cancellable(current.Status); err != nil {
			return nil, err
		}
		return nil, newError(ErrState, "booking status changed, retry")
	}

	booking.Status = domain.BookingStatusCancelled
	return booking, nil
}

// Complete transitions a confirmed booking to completed. Only the listing host
// may complete. Completed bookings are immutable.
func (s *BookingService) Complete(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	booking, listing, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if actorID != listing.HostID {
		return nil, ErrNotListingHost
	}

	if booking.Status != domain.BookingStatusConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	changed, err := s.bookingRepo.TransitionStatus(ctx, booking.ID, domain.BookingStatusCompleted, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}

	if !changed {
		return nil, ErrBookingNotConfirmed
	}

	booking.Status = domain.BookingStatusCompleted
	return booking, nil
}

func (s *BookingService) load(ctx context.Context, bookingID string) (*domain.Booking, *domain.Listing, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, nil, err
	}

	return booking, listing, nil
}

// confirmBooking locks the listing row, rejects overlaps and moves the
// booking from pending to confirmed. Callers run it inside a transaction.
func confirmBooking(ctx context.Context, stores repository.Stores, booking *domain.Booking) error {
	if _, err := stores.Listings.GetForUpdate(ctx, booking.ListingID); err != nil {
		return err
	}

	overlap, err := stores.Bookings.HasConfirmedOverlap(ctx, booking.ListingID, booking.CheckInDate, booking.CheckOutDate, booking.ID)
	if err != nil {
		return err
	}

	if overlap {
		return ErrBookingOverlap
	}

	changed, err := stores.Bookings.TransitionStatus(ctx, booking.ID, domain.BookingStatusConfirmed, domain.BookingStatusPending)
	if err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			return ErrBookingOverlap
		}
		return err
	}

	if !changed {
		return ErrBookingNotPending
	}

	return nil
}

func cancellable(status domain.BookingStatus) error {
	switch status {
	case domain.BookingStatusCompleted:
		return ErrBookingCompleted
	case domain.BookingStatusCancelled:
		return ErrBookingAlreadyCancelled
	default:
		return nil
	}
}
