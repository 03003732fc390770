package domain

// Notification templates.
const (
	TemplatePaymentConfirmed = "payment_confirmed"
	TemplatePaymentFailed    = "payment_failed"
)
