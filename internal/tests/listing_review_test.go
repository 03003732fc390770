package tests

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel/internal/domain"
	"travel/internal/service"
)

// ──────────────────────────────────────────────
// 8. LISTINGS
// ──────────────────────────────────────────────

func TestListingCreate_Validation(t *testing.T) {
	t.Parallel()

	valid := service.CreateListingRequest{
		HostID:        hostID,
		Title:         "City loft",
		Location:      "Addis Ababa",
		PricePerNight: decimal.RequireFromString("85.50"),
		MaxGuests:     2,
		Amenities:     []string{"wifi", " wifi ", "", "kitchen"},
	}

	testCases := []struct {
		name    string
		mutate  func(*service.CreateListingRequest)
		wantErr error
	}{
		{name: "valid", mutate: func(*service.CreateListingRequest) {}},
		{name: "zero price", mutate: func(r *service.CreateListingRequest) { r.PricePerNight = decimal.Zero }, wantErr: service.ErrInvalidPrice},
		{name: "negative price", mutate: func(r *service.CreateListingRequest) { r.PricePerNight = decimal.NewFromInt(-1) }, wantErr: service.ErrInvalidPrice},
		{name: "zero guests", mutate: func(r *service.CreateListingRequest) { r.MaxGuests = 0 }, wantErr: service.ErrInvalidMaxGuests},
		{name: "blank title", mutate: func(r *service.CreateListingRequest) { r.Title = "  " }, wantErr: service.ErrMissingListingFields},
		{name: "unknown host", mutate: func(r *service.CreateListingRequest) { r.HostID = "nobody" }, wantErr: service.ErrNotFound},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, service.PaymentConfig{})
			req := valid
			tc.mutate(&req)

			listing, err := h.listingService.Create(context.Background(), req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, listing.IsActive)
			assert.Equal(t, []string{"wifi", "kitchen"}, listing.Amenities)
		})
	}
}

func TestListingGet_ReadThroughCache(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})

	for i := 0; i < 3; i++ {
		listing, err := h.listingService.Get(context.Background(), listingID)
		require.NoError(t, err)
		assert.Equal(t, "Lakeside cabin", listing.Title)
	}

	assert.Equal(t, int32(1), h.listings.GetByIDCallCount)
	assert.Equal(t, int32(2), h.cache.HitCount)
}

func TestListingUpdate_HostOnlyAndInvalidatesCache(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	_, err := h.listingService.Get(context.Background(), listingID)
	require.NoError(t, err)
	require.True(t, h.cache.Has(listingID))

	price := decimal.RequireFromString("250.00")

	_, err = h.listingService.Update(context.Background(), listingID, guestID, service.UpdateListingRequest{PricePerNight: &price})
	assert.ErrorIs(t, err, service.ErrPermission)
	assert.True(t, h.cache.Has(listingID))

	updated, err := h.listingService.Update(context.Background(), listingID, hostID, service.UpdateListingRequest{PricePerNight: &price})
	require.NoError(t, err)
	assert.True(t, updated.PricePerNight.Equal(price))
	assert.Equal(t, "Lakeside cabin", updated.Title)
	assert.False(t, h.cache.Has(listingID))

	zero := 0
	_, err = h.listingService.Update(context.Background(), listingID, hostID, service.UpdateListingRequest{MaxGuests: &zero})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestListingDeactivate_HidesListing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})

	require.NoError(t, h.listingService.Deactivate(context.Background(), listingID, hostID))

	_, err := h.listingService.Get(context.Background(), listingID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	listings, err := h.listingService.List(context.Background(), domain.ListingFilter{})
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Equal(t, int32(1), h.cache.InvalidationCount)
}

func TestListingList_Filters(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.listings.AddListing(&domain.Listing{
		ID: "listing-2", HostID: hostID, Title: "Budget room", Location: "Addis Ababa",
		PricePerNight: decimal.RequireFromString("40.00"), MaxGuests: 1, IsActive: true,
	})

	cheap, err := h.listingService.List(context.Background(), domain.ListingFilter{
		MaxPrice: decimal.NewNullDecimal(decimal.RequireFromString("100")),
	})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, "listing-2", cheap[0].ID)

	byLocation, err := h.listingService.List(context.Background(), domain.ListingFilter{Location: "bishoftu"})
	require.NoError(t, err)
	require.Len(t, byLocation, 1)
	assert.Equal(t, listingID, byLocation[0].ID)

	_, err = h.listingService.List(context.Background(), domain.ListingFilter{
		MinPrice: decimal.NewNullDecimal(decimal.NewFromInt(300)),
		MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(100)),
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

// ──────────────────────────────────────────────
// 9. REVIEWS
// ──────────────────────────────────────────────

func TestReviewCreate_RequiresCompletedBooking(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.BookingStatus{
		domain.BookingStatusPending,
		domain.BookingStatusConfirmed,
		domain.BookingStatusCancelled,
	} {
		status := status
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, service.PaymentConfig{})
			h.addBooking("booking-1", status, "2025-01-10", "2025-01-15")

			_, err := h.reviewService.Create(context.Background(), service.CreateReviewRequest{
				ListingID: listingID, BookingID: "booking-1", GuestID: guestID, Rating: 5,
			})

			assert.ErrorIs(t, err, service.ErrState)
			assert.Equal(t, int32(0), h.reviews.CreateCallCount)
		})
	}
}

func TestReviewCreate_CompletedBooking_Succeeds(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("booking-1", domain.BookingStatusCompleted, "2025-01-10", "2025-01-15")

	review, err := h.reviewService.Create(context.Background(), service.CreateReviewRequest{
		ListingID: listingID, BookingID: "booking-1", GuestID: guestID,
		Rating: 4, Title: " Quiet and clean ", Comment: "Would stay again.",
	})
	require.NoError(t, err)

	assert.True(t, review.IsVerified)
	assert.Equal(t, "Quiet and clean", review.Title)

	reviews, err := h.reviewService.ListByListing(context.Background(), listingID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	_, err = h.reviewService.Create(context.Background(), service.CreateReviewRequest{
		ListingID: listingID, BookingID: "booking-1", GuestID: guestID, Rating: 1,
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestReviewCreate_Rejections(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		req     service.CreateReviewRequest
		wantErr error
	}{
		{
			name:    "rating too low",
			req:     service.CreateReviewRequest{ListingID: listingID, BookingID: "booking-1", GuestID: guestID, Rating: 0},
			wantErr: service.ErrValidation,
		},
		{
			name:    "rating too high",
			req:     service.CreateReviewRequest{ListingID: listingID, BookingID: "booking-1", GuestID: guestID, Rating: 6},
			wantErr: service.ErrValidation,
		},
		{
			name:    "listing mismatch",
			req:     service.CreateReviewRequest{ListingID: "listing-2", BookingID: "booking-1", GuestID: guestID, Rating: 5},
			wantErr: service.ErrReviewListingMismatch,
		},
		{
			name:    "another guest",
			req:     service.CreateReviewRequest{ListingID: listingID, BookingID: "booking-1", GuestID: strangerID, Rating: 5},
			wantErr: service.ErrState,
		},
		{
			name:    "unknown booking",
			req:     service.CreateReviewRequest{ListingID: listingID, BookingID: "missing", GuestID: guestID, Rating: 5},
			wantErr: service.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, service.PaymentConfig{})
			h.addBooking("booking-1", domain.BookingStatusCompleted, "2025-01-10", "2025-01-15")

			_, err := h.reviewService.Create(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// ──────────────────────────────────────────────
// 10. USERS
// ──────────────────────────────────────────────

func TestUserRegister(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})

	user, err := h.userService.Register(context.Background(), service.RegisterUserRequest{
		Username: "abebe", Email: "abebe@example.com", FirstName: "Abebe",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	_, err = h.userService.Register(context.Background(), service.RegisterUserRequest{
		Username: "abebe", Email: "other@example.com",
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = h.userService.Register(context.Background(), service.RegisterUserRequest{
		Username: "kebede", Email: "not-an-email",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}
