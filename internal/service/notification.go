package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"travel/internal/domain"
)

// EmailSender delivers a templated email.
type EmailSender interface {
	Send(ctx context.Context, template, recipient string, data map[string]any) error
}

// NotificationService handles notification delivery. Delivery is
// fire-and-forget: failures are logged and never returned to callers.
type NotificationService struct {
	sender EmailSender
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(sender EmailSender, logger *zap.Logger) *NotificationService {
	return &NotificationService{sender: sender, logger: logger}
}

// PaymentNotice carries what payment emails render.
type PaymentNotice struct {
	Payment *domain.Payment
	Booking *domain.Booking
	Listing *domain.Listing
	Guest   *domain.User
}

// NotifyPaymentConfirmed emails the guest a booking confirmation.
func (s *NotificationService) NotifyPaymentConfirmed(ctx context.Context, notice PaymentNotice) {
	s.send(ctx, domain.TemplatePaymentConfirmed, notice)
}

// NotifyPaymentFailed emails the guest that the payment did not go through.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, notice PaymentNotice) {
	s.send(ctx, domain.TemplatePaymentFailed, notice)
}

func (s *NotificationService) send(ctx context.Context, template string, notice PaymentNotice) {
	recipient := notice.Payment.CustomerEmail
	name := notice.Payment.CustomerName
	if notice.Guest != nil && notice.Guest.Email != "" {
		recipient = notice.Guest.Email
		name = notice.Guest.DisplayName()
	}

	if recipient == "" {
		s.logger.Warn("no recipient for notification",
			zap.String("template", template),
			zap.String("payment_reference", notice.Payment.PaymentReference),
		)
		return
	}

	data := map[string]any{
		"guest_name":        name,
		"payment_reference": notice.Payment.PaymentReference,
		"amount":            notice.Payment.Amount.StringFixed(2),
		"currency":          notice.Payment.Currency,
		"status":            string(notice.Payment.Status),
	}
	if notice.Booking != nil {
		data["booking_id"] = notice.Booking.ID
		data["check_in"] = notice.Booking.CheckInDate.Format(domain.DateLayout)
		data["check_out"] = notice.Booking.CheckOutDate.Format(domain.DateLayout)
		data["guests"] = notice.Booking.NumberOfGuests
		data["nights"] = notice.Booking.Nights()
	}
	if notice.Listing != nil {
		data["listing_title"] = notice.Listing.Title
		data["listing_location"] = notice.Listing.Location
	}

	start := time.Now()
	if err := s.sender.Send(ctx, template, recipient, data); err != nil {
		s.logger.Error("failed to send notification",
			zap.String("template", template),
			zap.String("recipient", recipient),
			zap.String("payment_reference", notice.Payment.PaymentReference),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("notification sent",
		zap.String("template", template),
		zap.String("recipient", recipient),
		zap.Duration("latency", time.Since(start)),
	)
}
