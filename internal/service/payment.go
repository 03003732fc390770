package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"travel/internal/chapa"
	"travel/internal/domain"
	"travel/internal/repository"
)

// Gateway is the payment gateway used for checkout and status lookups.
type Gateway interface {
	Initialize(ctx context.Context, req chapa.InitializeRequest) (*chapa.InitializeResponse, error)
	Verify(ctx context.Context, txRef string) (*chapa.VerifyResponse, error)
}

// PaymentConfig configures the payment workflow.
type PaymentConfig struct {
	Currency         string
	CallbackURL      string
	DefaultReturnURL string
	WebhookSecret    string
	CheckoutTitle    string
}

// PaymentService handles the payment lifecycle: initiate, verify and webhook.
type PaymentService struct {
	cfg                 PaymentConfig
	gateway             Gateway
	tx                  repository.Transactor
	paymentRepo         repository.PaymentRepository
	bookingRepo         repository.BookingRepository
	listingRepo         repository.ListingRepository
	userRepo            repository.UserRepository
	notificationService *NotificationService
	validate            *validator.Validate
	logger              *zap.Logger
	now                 func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	cfg PaymentConfig,
	gateway Gateway,
	tx repository.Transactor,
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	notificationService *NotificationService,
	logger *zap.Logger,
) *PaymentService {
	if cfg.Currency == "" {
		cfg.Currency = domain.DefaultCurrency
	}
	return &PaymentService{
		cfg:                 cfg,
		gateway:             gateway,
		tx:                  tx,
		paymentRepo:         paymentRepo,
		bookingRepo:         bookingRepo,
		listingRepo:         listingRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		validate:            validator.New(),
		logger:              logger,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

// InitiatePaymentRequest contains the parameters for starting a checkout.
type InitiatePaymentRequest struct {
	BookingID string
	ActorID   string
	Customer  domain.Customer
	ReturnURL string
}

// Initiate opens a gateway checkout session for a booking and records a
// pending payment. Nothing is persisted when the gateway call fails.
func (s *PaymentService) Initiate(ctx context.Context, req InitiatePaymentRequest) (*domain.Payment, error) {
	if err := s.validateCustomer(req.Customer); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != req.ActorID {
		return nil, ErrNotBookingGuest
	}

	existing, err := s.paymentRepo.GetActiveByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, ErrPaymentExists
	}

	if booking.Status != domain.BookingStatusPending && booking.Status != domain.BookingStatusConfirmed {
		return nil, ErrBookingNotPayable
	}

	listing, err := s.listingRepo.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = s.cfg.DefaultReturnURL
	}

	reference := uuid.New().String()
	resp, err := s.gateway.Initialize(ctx, chapa.InitializeRequest{
		Amount:      booking.TotalPrice,
		Currency:    s.cfg.Currency,
		Email:       req.Customer.Email,
		FirstName:   req.Customer.FirstName,
		LastName:    req.Customer.LastName,
		PhoneNumber: req.Customer.Phone,
		TxRef:       reference,
		CallbackURL: s.cfg.CallbackURL,
		ReturnURL:   returnURL,
		Customization: &chapa.Customization{
			Title:       s.cfg.CheckoutTitle,
			Description: "Booking payment for " + listing.Title,
		},
	})
	if err != nil {
		s.logger.Error("payment initiation failed",
			zap.String("booking_id", booking.ID),
			zap.String("payment_reference", reference),
			zap.Error(err),
		)
		return nil, gatewayError("initialize", err)
	}

	now := s.now()
	payment := &domain.Payment{
		ID:               uuid.New().String(),
		BookingID:        booking.ID,
		PaymentReference: reference,
		Amount:           booking.TotalPrice,
		Currency:         s.cfg.Currency,
		Status:           domain.PaymentStatusPending,
		CheckoutURL:      resp.CheckoutURL,
		GatewayResponse:  resp.Raw,
		CustomerName:     req.Customer.FullName(),
		CustomerEmail:    req.Customer.Email,
		CustomerPhone:    req.Customer.Phone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent initiate won; its checkout session stands.
			s.logger.Warn("discarding checkout session after concurrent initiate",
				zap.String("booking_id", booking.ID),
				zap.String("payment_reference", reference),
			)
			return nil, ErrPaymentExists
		}
		return nil, err
	}

	s.logger.Info("payment initiated",
		zap.String("booking_id", booking.ID),
		zap.String("payment_reference", reference),
		zap.String("amount", payment.Amount.String()),
	)

	return payment, nil
}

// Verify reconciles a payment with the gateway. Terminal payments are
// returned as stored without calling the gateway.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*domain.Payment, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrMissingReference
	}

	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if payment.Status.IsTerminal() {
		return payment, nil
	}

	if err := s.paymentRepo.RecordVerificationAttempt(ctx, reference, s.now()); err != nil {
		return nil, err
	}

	resp, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.logger.Warn("payment verification failed", zap.String("payment_reference", reference), zap.Error(err))
		return nil, gatewayError("verify", err)
	}

	to := mapGatewayStatus(resp.Transaction.Status)
	if to == domain.PaymentStatusPending {
		return s.paymentRepo.GetByReference(ctx, reference)
	}

	updated, _, err := s.transition(ctx, payment, domain.PaymentTransition{
		PaymentReference: reference,
		To:               to,
		TransactionID:    resp.Transaction.Reference,
		GatewayResponse:  resp.Raw,
		FailureReason:    failureReason(to, "verify"),
		At:               s.now(),
	})
	return updated, err
}

// WebhookPayload is the gateway's callback body.
type WebhookPayload struct {
	TxRef     string              `json:"tx_ref"`
	Status    string              `json:"status"`
	Amount    decimal.NullDecimal `json:"amount"`
	Currency  string              `json:"currency"`
	Reference string              `json:"reference"`
}

// WebhookResult reports what a webhook delivery did.
type WebhookResult struct {
	Payment *domain.Payment
	// Applied is false for duplicate or non-terminal deliveries.
	Applied bool
}

// HandleWebhook applies a gateway callback. Deliveries are at-least-once, so
// a callback for a payment that is already terminal is a successful no-op.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if s.cfg.WebhookSecret != "" && !chapa.VerifySignature(s.cfg.WebhookSecret, body, signature) {
		return nil, ErrInvalidSignature
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	status := domain.PaymentStatus(strings.ToLower(payload.Status))
	if status == chapa.StatusFailure {
		status = domain.PaymentStatusFailed
	}
	if payload.TxRef == "" || !status.Valid() {
		return nil, ErrInvalidWebhook
	}

	payment, err := s.paymentRepo.GetByReference(ctx, payload.TxRef)
	if err != nil {
		return nil, err
	}

	// Redeliveries for a settled payment are acknowledged as-is.
	if payment.Status.IsTerminal() || status == domain.PaymentStatusPending {
		s.logger.Info("webhook no-op",
			zap.String("payment_reference", payment.PaymentReference),
			zap.String("current_status", string(payment.Status)),
			zap.String("webhook_status", string(status)),
		)
		return &WebhookResult{Payment: payment}, nil
	}

	if payload.Amount.Valid && !payload.Amount.Decimal.Equal(payment.Amount) {
		return nil, ErrWebhookMismatch
	}
	if payload.Currency != "" && !strings.EqualFold(payload.Currency, payment.Currency) {
		return nil, ErrWebhookMismatch
	}

	updated, applied, err := s.transition(ctx, payment, domain.PaymentTransition{
		PaymentReference: payment.PaymentReference,
		To:               status,
		TransactionID:    payload.Reference,
		GatewayResponse:  body,
		FailureReason:    failureReason(status, "webhook"),
		WebhookVerified:  true,
		At:               s.now(),
	})
	if err != nil {
		return nil, err
	}

	return &WebhookResult{Payment: updated, Applied: applied}, nil
}

// History retrieves payments for bookings made by the actor.
func (s *PaymentService) History(ctx context.Context, actorID string) ([]*domain.Payment, error) {
	return s.paymentRepo.ListByGuest(ctx, actorID)
}

// Get retrieves a payment by reference.
func (s *PaymentService) Get(ctx context.Context, reference string) (*domain.Payment, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrMissingReference
	}
	return s.paymentRepo.GetByReference(ctx, reference)
}

// transition applies t as a compare-and-swap. On success the booking is
// confirmed in the same transaction. Notifications go out after commit and
// only for the caller that won the swap.
func (s *PaymentService) transition(ctx context.Context, payment *domain.Payment, t domain.PaymentTransition) (*domain.Payment, bool, error) {
	var (
		applied bool
		booking *domain.Booking
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		ok, err := stores.Payments.Transition(ctx, t)
		if err != nil || !ok {
			return err
		}
		applied = true

		booking, err = stores.Bookings.GetByID(ctx, payment.BookingID)
		if err != nil {
			return err
		}

		if t.To != domain.PaymentStatusSuccess || booking.Status != domain.BookingStatusPending {
			return nil
		}

		err = confirmBooking(ctx, stores, booking)
		switch {
		case err == nil:
			booking.Status = domain.BookingStatusConfirmed
			return nil
		case errors.Is(err, ErrBookingOverlap):
			// Funds are captured; the booking needs manual resolution.
			s.logger.Error("paid booking overlaps a confirmed booking",
				zap.String("booking_id", booking.ID),
				zap.String("payment_reference", t.PaymentReference),
			)
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}

	current, err := s.paymentRepo.GetByReference(ctx, t.PaymentReference)
	if err != nil {
		return nil, false, err
	}

	if !applied {
		return current, false, nil
	}

	s.logger.Info("payment transitioned",
		zap.String("payment_reference", t.PaymentReference),
		zap.String("status", string(t.To)),
		zap.Bool("webhook", t.WebhookVerified),
	)

	if booking != nil && booking.Status == domain.BookingStatusCancelled && t.To == domain.PaymentStatusSuccess {
		s.logger.Warn("payment succeeded for a cancelled booking",
			zap.String("booking_id", booking.ID),
			zap.String("payment_reference", t.PaymentReference),
		)
	}

	s.notify(ctx, current, booking)
	return current, true, nil
}

func (s *PaymentService) notify(ctx context.Context, payment *domain.Payment, booking *domain.Booking) {
	notice := PaymentNotice{Payment: payment, Booking: booking}

	if booking != nil {
		if listing, err := s.listingRepo.GetByID(ctx, booking.ListingID); err == nil {
			notice.Listing = listing
		}
		if guest, err := s.userRepo.GetByID(ctx, booking.GuestID); err == nil {
			notice.Guest = guest
		}
	}

	if payment.Status == domain.PaymentStatusSuccess {
		s.notificationService.NotifyPaymentConfirmed(ctx, notice)
		return
	}
	s.notificationService.NotifyPaymentFailed(ctx, notice)
}

func (s *PaymentService) validateCustomer(c domain.Customer) error {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return ErrInvalidCustomer
	}
	if err := s.validate.Var(c.Email, "required,email"); err != nil {
		return ErrInvalidCustomer
	}
	return nil
}

// mapGatewayStatus maps a gateway transaction status to a local status.
// Unknown statuses leave the payment pending.
func mapGatewayStatus(status string) domain.PaymentStatus {
	switch strings.ToLower(status) {
	case chapa.StatusSuccess:
		return domain.PaymentStatusSuccess
	case chapa.StatusFailed, chapa.StatusFailure:
		return domain.PaymentStatusFailed
	case chapa.StatusCancelled:
		return domain.PaymentStatusCancelled
	default:
		return domain.PaymentStatusPending
	}
}

func failureReason(status domain.PaymentStatus, source string) string {
	if status == domain.PaymentStatusSuccess {
		return ""
	}
	return fmt.Sprintf("%s: payment %s", source, status)
}
