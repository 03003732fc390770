package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"travel/internal/domain"
	"travel/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `p.id, p.booking_id, p.payment_reference, p.transaction_id, p.amount, p.currency, p.status,
	p.checkout_url, p.gateway_response, p.customer_name, p.customer_email, p.customer_phone, p.failure_reason,
	p.webhook_verified, p.verification_attempts, p.last_verification_at, p.paid_at, p.created_at, p.updated_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, payment_reference, transaction_id, amount, currency, status,
			checkout_url, gateway_response, customer_name, customer_email, customer_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.PaymentReference,
		payment.TransactionID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.CheckoutURL,
		jsonText(payment.GatewayResponse),
		payment.CustomerName,
		payment.CustomerEmail,
		payment.CustomerPhone,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return mapWriteError(err)
}

// GetByReference retrieves a payment by its payment reference.
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.payment_reference = $1`
	return scanPayment(r.q.QueryRowContext(ctx, query, reference))
}

// GetActiveByBookingID retrieves the pending or successful payment for a booking.
// Returns nil if no such payment exists.
func (r *PaymentRepository) GetActiveByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments p
		WHERE p.booking_id = $1 AND p.status IN ('pending', 'success')
		ORDER BY p.created_at DESC LIMIT 1
	`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return payment, nil
}

// ListByGuest retrieves payments for bookings made by a guest.
func (r *PaymentRepository) ListByGuest(ctx context.Context, guestID string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments p JOIN bookings b ON b.id = p.booking_id
		WHERE b.guest_id = $1
		ORDER BY p.created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, guestID)
	if isInvalidInput(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// RecordVerificationAttempt increments the verification counter.
func (r *PaymentRepository) RecordVerificationAttempt(ctx context.Context, reference string, at time.Time) error {
	query := `
		UPDATE payments
		SET verification_attempts = verification_attempts + 1, last_verification_at = $1, updated_at = $1
		WHERE payment_reference = $2
	`

	result, err := r.q.ExecContext(ctx, query, at, reference)
	if err != nil {
		return mapReadError(err)
	}

	return requireRow(result)
}

// Transition applies t only while the payment is still pending. The
// conditional WHERE makes concurrent verify and webhook calls race safely:
// exactly one of them observes a changed row.
func (r *PaymentRepository) Transition(ctx context.Context, t domain.PaymentTransition) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1,
			transaction_id = COALESCE(NULLIF($2, ''), transaction_id),
			gateway_response = gateway_response || $3::jsonb,
			failure_reason = $4,
			webhook_verified = webhook_verified OR $5,
			paid_at = COALESCE($6, paid_at),
			updated_at = $7
		WHERE payment_reference = $8 AND status = 'pending'
	`

	var paidAt sql.NullTime
	if t.To == domain.PaymentStatusSuccess {
		paidAt = sql.NullTime{Time: t.At, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		t.To,
		t.TransactionID,
		jsonText(t.GatewayResponse),
		t.FailureReason,
		t.WebhookVerified,
		paidAt,
		t.At,
		t.PaymentReference,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		payment            domain.Payment
		gatewayResponse    []byte
		lastVerificationAt sql.NullTime
		paidAt             sql.NullTime
	)

	err := row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.PaymentReference,
		&payment.TransactionID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.CheckoutURL,
		&gatewayResponse,
		&payment.CustomerName,
		&payment.CustomerEmail,
		&payment.CustomerPhone,
		&payment.FailureReason,
		&payment.WebhookVerified,
		&payment.VerificationAttempts,
		&lastVerificationAt,
		&paidAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadError(err)
	}

	payment.GatewayResponse = gatewayResponse
	if lastVerificationAt.Valid {
		payment.LastVerificationAt = &lastVerificationAt.Time
	}
	if paidAt.Valid {
		payment.PaidAt = &paidAt.Time
	}

	return &payment, nil
}

// jsonText sends JSON as text so Postgres casts it to jsonb rather than bytea.
func jsonText(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
