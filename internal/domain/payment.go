package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "ETB"

// IsTerminal reports whether no further transition is allowed from s.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s.IsTerminal()
}

// Customer holds the contact details sent to the gateway with a payment.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Payment represents a gateway payment for a booking.
type Payment struct {
	ID                   string
	BookingID            string
	PaymentReference     string
	TransactionID        string
	Amount               decimal.Decimal
	Currency             string
	Status               PaymentStatus
	CheckoutURL          string
	GatewayResponse      json.RawMessage
	CustomerName         string
	CustomerEmail        string
	CustomerPhone        string
	FailureReason        string
	WebhookVerified      bool
	VerificationAttempts int
	LastVerificationAt   *time.Time
	PaidAt               *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// PaymentTransition describes a compare-and-swap from pending into a
// terminal status.
type PaymentTransition struct {
	PaymentReference string
	To               PaymentStatus
	TransactionID    string
	GatewayResponse  json.RawMessage
	FailureReason    string
	WebhookVerified  bool
	At               time.Time
}
