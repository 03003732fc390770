package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// DateLayout is the calendar date format used for check-in and check-out.
const DateLayout = "2006-01-02"

// Booking represents a guest's reservation of a listing.
type Booking struct {
	ID              string
	ListingID       string
	GuestID         string
	CheckInDate     time.Time
	CheckOutDate    time.Time
	NumberOfGuests  int
	Status          BookingStatus
	TotalPrice      decimal.Decimal
	SpecialRequests string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Nights returns the number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return Nights(b.CheckInDate, b.CheckOutDate)
}

// Overlaps reports whether the booking's [check-in, check-out) range
// intersects [checkIn, checkOut).
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckInDate.Before(checkOut) && checkIn.Before(b.CheckOutDate)
}

// Nights counts whole calendar days from checkIn to checkOut.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}
