package service

import (
	"errors"
	"fmt"

	"travel/internal/repository"
)

// Error kinds. Every error returned by this package wraps exactly one kind,
// so callers branch with errors.Is.
var (
	// ErrValidation is returned for malformed or out-of-range input.
	ErrValidation = errors.New("validation error")

	// ErrPermission is returned when the actor may not perform the operation.
	ErrPermission = errors.New("permission denied")

	// ErrState is returned when an entity is in the wrong state for a transition.
	ErrState = errors.New("invalid state")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = repository.ErrNotFound

	// ErrGateway is returned when the payment gateway fails or is unreachable.
	ErrGateway = errors.New("payment gateway error")

	// ErrConflict is returned when a write would duplicate an existing entity.
	ErrConflict = errors.New("conflict")

	// ErrInvalidReference is returned when a write names an unknown or
	// malformed id, such as an actor that is not a registered user.
	ErrInvalidReference = repository.ErrInvalidReference
)

// Error is a classified service error.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	// ErrInvalidDates is returned when check-out is not after check-in.
	ErrInvalidDates = newError(ErrValidation, "check_out_date must be after check_in_date")

	// ErrInvalidGuestCount is returned when the guest count is below one.
	ErrInvalidGuestCount = newError(ErrValidation, "number_of_guests must be at least 1")

	// ErrCapacityExceeded is returned when the guest count exceeds the listing's max_guests.
	ErrCapacityExceeded = newError(ErrValidation, "number_of_guests exceeds listing capacity")

	// ErrListingInactive is returned when booking a deactivated listing.
	ErrListingInactive = newError(ErrValidation, "listing is not active")

	// ErrInvalidPrice is returned when price_per_night is not positive.
	ErrInvalidPrice = newError(ErrValidation, "price_per_night must be greater than 0")

	// ErrInvalidMaxGuests is returned when max_guests is not positive.
	ErrInvalidMaxGuests = newError(ErrValidation, "max_guests must be greater than 0")

	// ErrMissingListingFields is returned when title or location is empty.
	ErrMissingListingFields = newError(ErrValidation, "title and location are required")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = newError(ErrValidation, "rating must be between 1 and 5")

	// ErrReviewListingMismatch is returned when the booking belongs to another listing.
	ErrReviewListingMismatch = newError(ErrValidation, "booking does not belong to this listing")

	// ErrInvalidCustomer is returned when customer contact data is incomplete.
	ErrInvalidCustomer = newError(ErrValidation, "customer first_name, last_name and a valid email are required")

	// ErrBookingNotPayable is returned when initiating payment for a cancelled or completed booking.
	ErrBookingNotPayable = newError(ErrValidation, "booking must be pending or confirmed to accept payment")

	// ErrInvalidWebhook is returned for a webhook payload missing tx_ref or status.
	ErrInvalidWebhook = newError(ErrValidation, "webhook payload requires tx_ref and a known status")

	// ErrWebhookMismatch is returned when a webhook's amount or currency disagrees with the payment.
	ErrWebhookMismatch = newError(ErrValidation, "webhook amount or currency does not match payment")

	// ErrMissingReference is returned when no payment reference is supplied.
	ErrMissingReference = newError(ErrValidation, "payment_reference is required")

	// ErrInvalidUser is returned when registration data is incomplete.
	ErrInvalidUser = newError(ErrValidation, "username and a valid email are required")

	// ErrNotListingHost is returned when the actor does not own the listing.
	ErrNotListingHost = newError(ErrPermission, "only the listing host may perform this action")

	// ErrNotBookingParty is returned when the actor is neither guest nor host.
	ErrNotBookingParty = newError(ErrPermission, "only the guest or host may access this booking")

	// ErrNotBookingGuest is returned when the actor is not the booking's guest.
	ErrNotBookingGuest = newError(ErrPermission, "only the booking guest may pay for it")

	// ErrInvalidSignature is returned when a webhook signature does not verify.
	ErrInvalidSignature = newError(ErrPermission, "invalid webhook signature")

	// ErrBookingNotPending is returned when confirming a booking that is not pending.
	ErrBookingNotPending = newError(ErrState, "booking is not pending")

	// ErrBookingNotConfirmed is returned when completing a booking that is not confirmed.
	ErrBookingNotConfirmed = newError(ErrState, "booking is not confirmed")

	// ErrBookingCompleted is returned when cancelling a completed booking.
	ErrBookingCompleted = newError(ErrState, "completed bookings cannot be cancelled")

	// ErrBookingAlreadyCancelled is returned when cancelling a cancelled booking.
	ErrBookingAlreadyCancelled = newError(ErrState, "booking is already cancelled")

	// ErrPaymentExists is returned when the booking already has a pending or successful payment.
	ErrPaymentExists = newError(ErrState, "booking already has an active payment")

	// ErrReviewNotAllowed is returned when the booking is not completed or belongs to another guest.
	ErrReviewNotAllowed = newError(ErrState, "reviews require a completed booking by the same guest")

	// ErrBookingOverlap is returned when dates overlap a confirmed booking.
	ErrBookingOverlap = newError(ErrConflict, "dates overlap a confirmed booking")

	// ErrReviewExists is returned when the booking already has a review.
	ErrReviewExists = newError(ErrConflict, "booking already has a review")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = newError(ErrConflict, "username already registered")

	// ErrListingLocked is returned when another confirm holds the listing lock.
	ErrListingLocked = newError(ErrConflict, "listing is being updated, retry shortly")
)

// gatewayError wraps a gateway failure with ErrGateway.
func gatewayError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrGateway, op, err)
}
