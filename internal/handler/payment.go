package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travel/internal/domain"
	"travel/internal/service"
)

// Chapa signs webhook bodies under either header name.
var signatureHeaders = []string{"Chapa-Signature", "X-Chapa-Signature"}

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CustomerData identifies the payer to the gateway.
type CustomerData struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// InitiatePaymentRequest is the HTTP request body for starting a checkout.
type InitiatePaymentRequest struct {
	BookingID    string        `json:"booking_id" binding:"required"`
	CustomerData *CustomerData `json:"customer_data" binding:"required"`
	ReturnURL    string        `json:"return_url"`
}

// InitiatePaymentResponse is the HTTP response for a started checkout.
type InitiatePaymentResponse struct {
	Success          bool   `json:"success"`
	CheckoutURL      string `json:"checkout_url"`
	PaymentReference string `json:"payment_reference"`
}

// PaymentResponse is the HTTP response for payment data.
type PaymentResponse struct {
	ID                   string     `json:"id"`
	BookingID            string     `json:"booking_id"`
	PaymentReference     string     `json:"payment_reference"`
	TransactionID        string     `json:"transaction_id"`
	Amount               string     `json:"amount"`
	Currency             string     `json:"currency"`
	Status               string     `json:"status"`
	CheckoutURL          string     `json:"checkout_url"`
	FailureReason        string     `json:"failure_reason,omitempty"`
	WebhookVerified      bool       `json:"webhook_verified"`
	VerificationAttempts int        `json:"verification_attempts"`
	PaidAt               *time.Time `json:"paid_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// WebhookResponse acknowledges a webhook delivery.
type WebhookResponse struct {
	Status           string `json:"status"`
	Applied          bool   `json:"applied"`
	PaymentReference string `json:"payment_reference"`
	PaymentStatus    string `json:"payment_status"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		BookingID:            p.BookingID,
		PaymentReference:     p.PaymentReference,
		TransactionID:        p.TransactionID,
		Amount:               p.Amount.StringFixed(2),
		Currency:             p.Currency,
		Status:               string(p.Status),
		CheckoutURL:          p.CheckoutURL,
		FailureReason:        p.FailureReason,
		WebhookVerified:      p.WebhookVerified,
		VerificationAttempts: p.VerificationAttempts,
		PaidAt:               p.PaidAt,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// Initiate handles POST /api/payments/initiate/
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "booking_id and customer_data are required")
		return
	}

	payment, err := h.paymentService.Initiate(c.Request.Context(), service.InitiatePaymentRequest{
		BookingID: req.BookingID,
		ActorID:   actorID(c),
		Customer: domain.Customer{
			FirstName: req.CustomerData.FirstName,
			LastName:  req.CustomerData.LastName,
			Email:     req.CustomerData.Email,
			Phone:     req.CustomerData.Phone,
		},
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, InitiatePaymentResponse{
		Success:          true,
		CheckoutURL:      payment.CheckoutURL,
		PaymentReference: payment.PaymentReference,
	})
}

// Verify handles GET /api/payments/verify/?payment_reference=
func (h *PaymentHandler) Verify(c *gin.Context) {
	payment, err := h.paymentService.Verify(c.Request.Context(), c.Query("payment_reference"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// History handles GET /api/payments/history/
func (h *PaymentHandler) History(c *gin.Context) {
	payments, err := h.paymentService.History(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, toPaymentResponse(p))
	}

	c.JSON(http.StatusOK, response)
}

// Webhook handles POST /api/payments/webhook/
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "unreadable body")
		return
	}

	var signature string
	for _, name := range signatureHeaders {
		if signature = c.GetHeader(name); signature != "" {
			break
		}
	}

	result, err := h.paymentService.HandleWebhook(c.Request.Context(), body, signature)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, WebhookResponse{
		Status:           "ok",
		Applied:          result.Applied,
		PaymentReference: result.Payment.PaymentReference,
		PaymentStatus:    string(result.Payment.Status),
	})
}
