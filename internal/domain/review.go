package domain

import "time"

// Review represents a guest's rating of a listing after a completed stay.
type Review struct {
	ID         string
	ListingID  string
	GuestID    string
	BookingID  string
	Rating     int
	Title      string
	Comment    string
	IsVerified bool
	CreatedAt  time.Time
}
