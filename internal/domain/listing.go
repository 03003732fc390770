package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents a property offered for booking by a host.
type Listing struct {
	ID            string
	HostID        string
	Title         string
	Description   string
	Location      string
	PricePerNight decimal.Decimal
	MaxGuests     int
	Bedrooms      int
	Bathrooms     int
	Amenities     []string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListingFilter narrows a listing search. Zero values are ignored.
type ListingFilter struct {
	Location string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	HostID   string
}
