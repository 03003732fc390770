package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel/internal/domain"
	"travel/internal/service"
)

// ──────────────────────────────────────────────
// 1. BOOKING CREATION
// ──────────────────────────────────────────────

func TestBookingCreate_PricesNightsTimesRate(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})

	booking, err := h.bookingService.Create(context.Background(), service.CreateBookingRequest{
		ListingID:      listingID,
		GuestID:        guestID,
		CheckIn:        day("2025-01-10"),
		CheckOut:       day("2025-01-15"),
		NumberOfGuests: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, 5, booking.Nights())
	assert.True(t, booking.TotalPrice.Equal(decimal.RequireFromString("1000.00")), "got %s", booking.TotalPrice)
	assert.Equal(t, 1, h.bookings.CountBookings())
}

func TestBookingCreate_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		req     service.CreateBookingRequest
		wantErr error
	}{
		{
			name: "check-out equals check-in",
			req: service.CreateBookingRequest{
				ListingID: listingID, GuestID: guestID,
				CheckIn: day("2025-01-10"), CheckOut: day("2025-01-10"), NumberOfGuests: 1,
			},
			wantErr: service.ErrInvalidDates,
		},
		{
			name: "check-out before check-in",
			req: service.CreateBookingRequest{
				ListingID: listingID, GuestID: guestID,
				CheckIn: day("2025-01-10"), CheckOut: day("2025-01-08"), NumberOfGuests: 1,
			},
			wantErr: service.ErrInvalidDates,
		},
		{
			name: "zero guests",
			req: service.CreateBookingRequest{
				ListingID: listingID, GuestID: guestID,
				CheckIn: day("2025-01-10"), CheckOut: day("2025-01-12"), NumberOfGuests: 0,
			},
			wantErr: service.ErrInvalidGuestCount,
		},
		{
			name: "over capacity",
			req: service.CreateBookingRequest{
				ListingID: listingID, GuestID: guestID,
				CheckIn: day("2025-01-10"), CheckOut: day("2025-01-12"), NumberOfGuests: 5,
			},
			wantErr: service.ErrCapacityExceeded,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, service.PaymentConfig{})
			_, err := h.bookingService.Create(context.Background(), tc.req)

			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, service.ErrValidation)
			assert.Equal(t, 0, h.bookings.CountBookings())
		})
	}
}

func TestBookingCreate_InactiveListing_Fails(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.listings.GetListing(listingID).IsActive = false

	_, err := h.bookingService.Create(context.Background(), service.CreateBookingRequest{
		ListingID: listingID, GuestID: guestID,
		CheckIn: day("2025-01-10"), CheckOut: day("2025-01-12"), NumberOfGuests: 1,
	})

	assert.ErrorIs(t, err, service.ErrListingInactive)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestBookingCreate_UnknownListing_NotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})

	_, err := h.bookingService.Create(context.Background(), service.CreateBookingRequest{
		ListingID: "missing", GuestID: guestID,
		CheckIn: day("2025-01-10"), CheckOut: day("2025-01-12"), NumberOfGuests: 1,
	})

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestBookingCreate_OverlapWithConfirmed_Conflict(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("confirmed-1", domain.BookingStatusConfirmed, "2025-01-10", "2025-01-15")

	_, err := h.bookingService.Create(context.Background(), service.CreateBookingRequest{
		ListingID: listingID, GuestID: guestID,
		CheckIn: day("2025-01-14"), CheckOut: day("2025-01-16"), NumberOfGuests: 1,
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	// Check-out day is free for the next arrival.
	_, err = h.bookingService.Create(context.Background(), service.CreateBookingRequest{
		ListingID: listingID, GuestID: guestID,
		CheckIn: day("2025-01-15"), CheckOut: day("2025-01-16"), NumberOfGuests: 1,
	})
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────
// 2. CONFIRMATION
// ──────────────────────────────────────────────

func TestBookingConfirm_HostOnly(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("booking-1", domain.BookingStatusPending, "2025-01-10", "2025-01-15")

	_, err := h.bookingService.Confirm(context.Background(), "booking-1", guestID)
	assert.ErrorIs(t, err, service.ErrPermission)
	assert.Equal(t, domain.BookingStatusPending, h.bookings.GetBooking("booking-1").Status)

	booking, err := h.bookingService.Confirm(context.Background(), "booking-1", hostID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, domain.BookingStatusConfirmed, h.bookings.GetBooking("booking-1").Status)
	assert.False(t, h.locks.IsLocked(listingID), "listing lock should be released")
}

func TestBookingConfirm_NotPending_StateError(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.BookingStatus{
		domain.BookingStatusConfirmed,
		domain.BookingStatusCancelled,
		domain.BookingStatusCompleted,
	} {
		status := status
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, service.PaymentConfig{})
			h.addBooking("booking-1", status, "2025-01-10", "2025-01-15")

			_, err := h.bookingService.Confirm(context.Background(), "booking-1", hostID)
			assert.ErrorIs(t, err, service.ErrState)
		})
	}
}

func TestBookingConfirm_OverlappingPending_SecondConflicts(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("booking-1", domain.BookingStatusPending, "2025-01-10", "2025-01-15")
	h.addBooking("booking-2", domain.BookingStatusPending, "2025-01-12", "2025-01-18")

	_, err := h.bookingService.Confirm(context.Background(), "booking-1", hostID)
	require.NoError(t, err)

	_, err = h.bookingService.Confirm(context.Background(), "booking-2", hostID)
	assert.ErrorIs(t, err, service.ErrBookingOverlap)
	assert.Equal(t, domain.BookingStatusPending, h.bookings.GetBooking("booking-2").Status)
}

func TestBookingConfirm_ConcurrentOverlapping_OneWins(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	ids := []string{"booking-1", "booking-2", "booking-3", "booking-4"}
	for _, id := range ids {
		h.addBooking(id, domain.BookingStatusPending, "2025-02-01", "2025-02-05")
	}

	var (
		wg        sync.WaitGroup
		confirmed int32
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := h.bookingService.Confirm(context.Background(), id, hostID); err == nil {
				atomic.AddInt32(&confirmed, 1)
			} else if !errors.Is(err, service.ErrConflict) {
				t.Errorf("unexpected error for %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int32(1), confirmed)
}

func TestBookingConfirm_LockHeld_Conflict(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("booking-1", domain.BookingStatusPending, "2025-01-10", "2025-01-15")
	h.locks.Hold(listingID)

	_, err := h.bookingService.Confirm(context.Background(), "booking-1", hostID)

	assert.ErrorIs(t, err, service.ErrListingLocked)
	assert.Equal(t, int32(0), h.tx.CallCount)
}

func TestBookingConfirm_LockStoreDown_StillConfirms(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("booking-1", domain.BookingStatusPending, "2025-01-10", "2025-01-15")
	h.locks.AcquireError = errors.New("redis: connection refused")

	booking, err := h.bookingService.Confirm(context.Background(), "booking-1", hostID)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, int32(1), h.listings.GetForUpdateCallCount)
}

// ──────────────────────────────────────────────
// 3. CANCELLATION AND COMPLETION
// ──────────────────────────────────────────────

func TestBookingCancel_GuestOrHost(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("booking-1", domain.BookingStatusPending, "2025-01-10", "2025-01-15")
	h.addBooking("booking-2", domain.BookingStatusConfirmed, "2025-02-10", "2025-02-15")

	_, err := h.bookingService.Cancel(context.Background(), "booking-1", strangerID)
	assert.ErrorIs(t, err, service.ErrPermission)

	booking, err := h.bookingService.Cancel(context.Background(), "booking-1", guestID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)

	booking, err = h.bookingService.Cancel(context.Background(), "booking-2", hostID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
}

func TestBookingCancel_CompletedOrCancelled_StateError(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("completed", domain.BookingStatusCompleted, "2025-01-10", "2025-01-15")
	h.addBooking("cancelled", domain.BookingStatusCancelled, "2025-02-10", "2025-02-15")

	_, err := h.bookingService.Cancel(context.Background(), "completed", guestID)
	assert.ErrorIs(t, err, service.ErrBookingCompleted)
	assert.ErrorIs(t, err, service.ErrState)
	assert.Equal(t, domain.BookingStatusCompleted, h.bookings.GetBooking("completed").Status)

	_, err = h.bookingService.Cancel(context.Background(), "cancelled", guestID)
	assert.ErrorIs(t, err, service.ErrState)
}

func TestBookingComplete_RequiresConfirmed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("pending", domain.BookingStatusPending, "2025-01-10", "2025-01-15")
	h.addBooking("confirmed", domain.BookingStatusConfirmed, "2025-02-10", "2025-02-15")

	_, err := h.bookingService.Complete(context.Background(), "pending", hostID)
	assert.ErrorIs(t, err, service.ErrState)

	_, err = h.bookingService.Complete(context.Background(), "confirmed", guestID)
	assert.ErrorIs(t, err, service.ErrPermission)

	booking, err := h.bookingService.Complete(context.Background(), "confirmed", hostID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, booking.Status)
}

func TestBookingList_ByRole(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("booking-1", domain.BookingStatusPending, "2025-01-10", "2025-01-15")

	asGuest, err := h.bookingService.List(context.Background(), guestID, service.BookingRoleGuest)
	require.NoError(t, err)
	assert.Len(t, asGuest, 1)

	asHost, err := h.bookingService.List(context.Background(), hostID, service.BookingRoleHost)
	require.NoError(t, err)
	assert.Len(t, asHost, 1)

	none, err := h.bookingService.List(context.Background(), strangerID, service.BookingRoleHost)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = h.bookingService.List(context.Background(), guestID, "owner")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestBookingGet_Visibility(t *testing.T) {
	t.Parallel()

	h := newHarness(t, service.PaymentConfig{})
	h.addBooking("booking-1", domain.BookingStatusPending, "2025-01-10", "2025-01-15")

	_, err := h.bookingService.Get(context.Background(), "booking-1", strangerID)
	assert.ErrorIs(t, err, service.ErrPermission)

	_, err = h.bookingService.Get(context.Background(), "booking-1", hostID)
	assert.NoError(t, err)
}
