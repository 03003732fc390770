package email

import (
	htmltemplate "html/template"
	texttemplate "text/template"

	"travel/internal/domain"
)

type messageTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

var templates = map[string]messageTemplate{
	domain.TemplatePaymentConfirmed: {
		subject: texttemplate.Must(texttemplate.New("subject").Parse(`Booking Confirmation - {{.listing_title}}`)),
		text: texttemplate.Must(texttemplate.New("text").Parse(`Booking Confirmation

Dear {{.guest_name}},

Your booking has been confirmed! Here are the details:

Property: {{.listing_title}}
Location: {{.listing_location}}
Check-in: {{.check_in}}
Check-out: {{.check_out}}
Guests: {{.guests}}
Total Amount: {{.currency}} {{.amount}}
Payment Reference: {{.payment_reference}}
`)),
		html: htmltemplate.Must(htmltemplate.New("html").Parse(`<html><body>
<h2>Booking Confirmation</h2>
<p>Dear {{.guest_name}},</p>
<p>Your booking has been confirmed! Here are the details:</p>
<div style="border: 1px solid #ddd; padding: 20px; margin: 20px 0;">
<h3>{{.listing_title}}</h3>
<p><strong>Location:</strong> {{.listing_location}}</p>
<p><strong>Check-in:</strong> {{.check_in}}</p>
<p><strong>Check-out:</strong> {{.check_out}}</p>
<p><strong>Guests:</strong> {{.guests}}</p>
<p><strong>Total Amount:</strong> {{.currency}} {{.amount}}</p>
<p><strong>Payment Reference:</strong> {{.payment_reference}}</p>
</div>
</body></html>`)),
	},
	domain.TemplatePaymentFailed: {
		subject: texttemplate.Must(texttemplate.New("subject").Parse(`Payment Failed - {{.listing_title}}`)),
		text: texttemplate.Must(texttemplate.New("text").Parse(`Payment Failed

Dear {{.guest_name}},

Unfortunately, your payment for the following booking could not be processed:

Property: {{.listing_title}}
Location: {{.listing_location}}
Check-in: {{.check_in}}
Check-out: {{.check_out}}
Amount: {{.currency}} {{.amount}}
Payment Reference: {{.payment_reference}}

Please try again or contact our support team for assistance.
`)),
		html: htmltemplate.Must(htmltemplate.New("html").Parse(`<html><body>
<h2>Payment Failed</h2>
<p>Dear {{.guest_name}},</p>
<p>Unfortunately, your payment for the following booking could not be processed:</p>
<div style="border: 1px solid #ddd; padding: 20px; margin: 20px 0;">
<h3>{{.listing_title}}</h3>
<p><strong>Location:</strong> {{.listing_location}}</p>
<p><strong>Check-in:</strong> {{.check_in}}</p>
<p><strong>Check-out:</strong> {{.check_out}}</p>
<p><strong>Amount:</strong> {{.currency}} {{.amount}}</p>
<p><strong>Payment Reference:</strong> {{.payment_reference}}</p>
</div>
<p>Please try again or contact our support team for assistance.</p>
</body></html>`)),
	},
}
