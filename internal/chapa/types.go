package chapa

import (
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Gateway transaction statuses.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusFailure   = "failure"
	StatusCancelled = "cancelled"
	StatusPending   = "pending"
)

// Customization controls the hosted checkout page.
type Customization struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// InitializeRequest is the body of POST /transaction/initialize.
type InitializeRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	PhoneNumber   string          `json:"phone_number,omitempty"`
	TxRef         string          `json:"tx_ref"`
	CallbackURL   string          `json:"callback_url,omitempty"`
	ReturnURL     string          `json:"return_url,omitempty"`
	Customization *Customization  `json:"customization,omitempty"`
}

// InitializeResponse carries the hosted checkout link.
type InitializeResponse struct {
	CheckoutURL string
	// Raw is the gateway's data object, stored with the payment.
	Raw json.RawMessage
}

// Transaction is the gateway's view of a payment.
type Transaction struct {
	TxRef     string          `json:"tx_ref"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Email     string          `json:"email"`
}

// VerifyResponse is the result of GET /transaction/verify/{tx_ref}.
type VerifyResponse struct {
	Transaction Transaction
	Raw         json.RawMessage
}

// envelope is the common shape of every gateway response.
type envelope struct {
	Message json.RawMessage `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

type checkoutData struct {
	CheckoutURL string `json:"checkout_url"`
}
