package handler_test

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"travel/internal/chapa"
	"travel/internal/domain"
	"travel/internal/handler"
	"travel/internal/middleware"
	"travel/internal/service"
	"travel/internal/tests"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router   *gin.Engine
	listings *tests.MockListingRepository
	bookings *tests.MockBookingRepository
	payments *tests.MockPaymentRepository
	gateway  *tests.MockGateway
}

func newFixture(t *testing.T, cfg service.PaymentConfig) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)

	users := tests.NewMockUserRepository()
	listings := tests.NewMockListingRepository()
	bookings := tests.NewMockBookingRepository(listings)
	payments := tests.NewMockPaymentRepository(bookings)
	reviews := tests.NewMockReviewRepository()
	tx := &tests.MockTransactor{Listings: listings, Bookings: bookings, Payments: payments}
	gateway := tests.NewMockGateway()

	users.AddUser(&domain.User{ID: "host-1", Username: "host", Email: "host@example.com"})
	users.AddUser(&domain.User{ID: "guest-1", Username: "guest", Email: "guest@example.com"})
	listings.AddListing(&domain.Listing{
		ID: "listing-1", HostID: "host-1", Title: "Lakeside cabin", Location: "Bishoftu",
		PricePerNight: decimal.RequireFromString("200.00"), MaxGuests: 4, IsActive: true,
	})

	notificationService := service.NewNotificationService(tests.NewMockEmailSender(), logger)

	userHandler := handler.NewUserHandler(service.NewUserService(users))
	listingHandler := handler.NewListingHandler(service.NewListingService(listings, users, tests.NewMockListingCache(), logger))
	bookingHandler := handler.NewBookingHandler(service.NewBookingService(tx, bookings, listings, tests.NewMockLockStore(), logger))
	reviewHandler := handler.NewReviewHandler(service.NewReviewService(reviews, bookings))
	paymentHandler := handler.NewPaymentHandler(service.NewPaymentService(cfg, gateway, tx, payments, bookings, listings, users, notificationService, logger))

	router := gin.New()
	api := router.Group("/api")
	api.POST("/users/", userHandler.Register)
	api.GET("/listings/:id/", listingHandler.Get)
	api.GET("/listings/", listingHandler.GetAll)
	api.GET("/reviews/", reviewHandler.GetAll)
	api.POST("/payments/webhook/", paymentHandler.Webhook)

	authed := api.Group("", middleware.RequireActor())
	authed.POST("/listings/", listingHandler.Create)
	authed.POST("/bookings/", bookingHandler.Create)
	authed.POST("/bookings/:id/confirm/", bookingHandler.Confirm)
	authed.POST("/bookings/:id/cancel/", bookingHandler.Cancel)
	authed.POST("/reviews/", reviewHandler.Create)
	authed.POST("/payments/initiate/", paymentHandler.Initiate)
	authed.GET("/payments/verify/", paymentHandler.Verify)
	authed.GET("/payments/history/", paymentHandler.History)

	return &fixture{router: router, listings: listings, bookings: bookings, payments: payments, gateway: gateway}
}

func (f *fixture) do(method, path, actor string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(middleware.ActorHeader, actor)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestBookingFlow_CreateAndConfirm(t *testing.T) {
	f := newFixture(t, service.PaymentConfig{})

	w := f.do(http.MethodPost, "/api/bookings/", "guest-1", map[string]any{
		"listing_id":       "listing-1",
		"check_in_date":    "2025-01-10",
		"check_out_date":   "2025-01-15",
		"number_of_guests": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var booking handler.BookingResponse
	decode(t, w, &booking)
	assert.Equal(t, "1000.00", booking.TotalPrice)
	assert.Equal(t, 5, booking.Nights)
	assert.Equal(t, "pending", booking.Status)

	w = f.do(http.MethodPost, "/api/bookings/"+booking.ID+"/confirm/", "guest-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/bookings/"+booking.ID+"/confirm/", "host-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &booking)
	assert.Equal(t, "confirmed", booking.Status)

	w = f.do(http.MethodPost, "/api/bookings/"+booking.ID+"/confirm/", "host-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingCreate_StatusCodes(t *testing.T) {
	f := newFixture(t, service.PaymentConfig{})

	testCases := []struct {
		name   string
		actor  string
		body   any
		status int
	}{
		{
			name:   "missing actor",
			body:   map[string]any{"listing_id": "listing-1", "check_in_date": "2025-01-10", "check_out_date": "2025-01-12", "number_of_guests": 1},
			status: http.StatusUnauthorized,
		},
		{
			name:   "bad date format",
			actor:  "guest-1",
			body:   map[string]any{"listing_id": "listing-1", "check_in_date": "10/01/2025", "check_out_date": "2025-01-12", "number_of_guests": 1},
			status: http.StatusBadRequest,
		},
		{
			name:   "reversed dates",
			actor:  "guest-1",
			body:   map[string]any{"listing_id": "listing-1", "check_in_date": "2025-01-12", "check_out_date": "2025-01-10", "number_of_guests": 1},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown listing",
			actor:  "guest-1",
			body:   map[string]any{"listing_id": "nope", "check_in_date": "2025-01-10", "check_out_date": "2025-01-12", "number_of_guests": 1},
			status: http.StatusNotFound,
		},
		{
			name:   "malformed body",
			actor:  "guest-1",
			body:   []byte(`{"listing_id":`),
			status: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/bookings/", tc.actor, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestPaymentFlow_InitiateAndWebhook(t *testing.T) {
	f := newFixture(t, service.PaymentConfig{WebhookSecret: "whsec"})
	f.bookings.AddBooking(&domain.Booking{
		ID: "booking-1", ListingID: "listing-1", GuestID: "guest-1",
		CheckInDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), CheckOutDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 2, Status: domain.BookingStatusPending, TotalPrice: decimal.RequireFromString("1000.00"),
	})

	customer := map[string]any{
		"first_name": "Gedion",
		"last_name":  "Guest",
		"email":      "guest@example.com",
		"phone":      "+251911000000",
	}

	w := f.do(http.MethodPost, "/api/payments/initiate/", "guest-1", map[string]any{
		"booking_id": "booking-1", "customer_data": customer, "return_url": "https://travel.example.com/done",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var initiated handler.InitiatePaymentResponse
	decode(t, w, &initiated)
	assert.True(t, initiated.Success)
	assert.NotEmpty(t, initiated.CheckoutURL)

	sent := f.gateway.LastInitialize
	assert.Equal(t, "Gedion", sent.FirstName)
	assert.Equal(t, "+251911000000", sent.PhoneNumber)
	assert.Equal(t, "https://travel.example.com/done", sent.ReturnURL)

	w = f.do(http.MethodPost, "/api/payments/initiate/", "guest-1", map[string]any{
		"booking_id": "booking-1", "customer_data": customer,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	body := []byte(`{"tx_ref":"` + initiated.PaymentReference + `","status":"success","amount":"1000.00","currency":"ETB","reference":"CH-77"}`)

	w = f.do(http.MethodPost, "/api/payments/webhook/", "", body, "Chapa-Signature", "deadbeef")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/payments/webhook/", "", body, "X-Chapa-Signature", chapa.Sign("whsec", body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ack handler.WebhookResponse
	decode(t, w, &ack)
	assert.True(t, ack.Applied)
	assert.Equal(t, "success", ack.PaymentStatus)

	w = f.do(http.MethodPost, "/api/payments/webhook/", "", body, "Chapa-Signature", chapa.Sign("whsec", body))
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &ack)
	assert.False(t, ack.Applied)

	w = f.do(http.MethodGet, "/api/payments/verify/?payment_reference="+initiated.PaymentReference, "guest-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payment handler.PaymentResponse
	decode(t, w, &payment)
	assert.Equal(t, "success", payment.Status)
	assert.Equal(t, "1000.00", payment.Amount)
	assert.True(t, payment.WebhookVerified)
	assert.NotNil(t, payment.PaidAt)
	assert.Equal(t, domain.BookingStatusConfirmed, f.bookings.GetBooking("booking-1").Status)
}

func TestPaymentInitiate_RequiresCustomerData(t *testing.T) {
	f := newFixture(t, service.PaymentConfig{})
	f.bookings.AddBooking(&domain.Booking{
		ID: "booking-1", ListingID: "listing-1", GuestID: "guest-1",
		Status: domain.BookingStatusPending, TotalPrice: decimal.RequireFromString("400.00"),
	})

	w := f.do(http.MethodPost, "/api/payments/initiate/", "guest-1", map[string]any{
		"booking_id": "booking-1", "first_name": "Gedion", "last_name": "Guest", "email": "guest@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), f.gateway.InitializeCallCount)
	assert.Equal(t, 0, f.payments.CountPayments())
}

func TestBookingCreate_UnknownGuest(t *testing.T) {
	f := newFixture(t, service.PaymentConfig{})
	f.bookings.CreateError = fmt.Errorf("%w: bookings_guest_id_fkey", service.ErrInvalidReference)

	w := f.do(http.MethodPost, "/api/bookings/", "someone-else", map[string]any{
		"listing_id": "listing-1", "check_in_date": "2025-01-10", "check_out_date": "2025-01-12", "number_of_guests": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestPaymentWebhook_StatusCodes(t *testing.T) {
	f := newFixture(t, service.PaymentConfig{})

	w := f.do(http.MethodPost, "/api/payments/webhook/", "", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/payments/webhook/", "", []byte(`{"tx_ref":"unknown","status":"success"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.payments.TransitionError = errors.New("connection reset")
	f.bookings.AddBooking(&domain.Booking{ID: "booking-1", ListingID: "listing-1", GuestID: "guest-1", Status: domain.BookingStatusPending})
	f.payments.AddPayment(&domain.Payment{
		ID: "payment-1", BookingID: "booking-1", PaymentReference: "ref-1",
		Amount: decimal.NewFromInt(100), Currency: "ETB", Status: domain.PaymentStatusPending,
	})

	w = f.do(http.MethodPost, "/api/payments/webhook/", "", []byte(`{"tx_ref":"ref-1","status":"success"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestPaymentVerify_GatewayStatusCodes(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "gateway failure", err: &chapa.APIError{StatusCode: 502, Message: "bad gateway"}, status: http.StatusBadGateway},
		{name: "circuit open", err: chapa.ErrCircuitOpen, status: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, service.PaymentConfig{})
			f.bookings.AddBooking(&domain.Booking{ID: "booking-1", ListingID: "listing-1", GuestID: "guest-1", Status: domain.BookingStatusPending})
			f.payments.AddPayment(&domain.Payment{
				ID: "payment-1", BookingID: "booking-1", PaymentReference: "ref-1",
				Amount: decimal.NewFromInt(100), Currency: "ETB", Status: domain.PaymentStatusPending,
			})
			f.gateway.VerifyError = tc.err

			w := f.do(http.MethodGet, "/api/payments/verify/?payment_reference=ref-1", "guest-1", nil)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestListingEndpoints(t *testing.T) {
	f := newFixture(t, service.PaymentConfig{})

	w := f.do(http.MethodGet, "/api/listings/listing-1/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing handler.ListingResponse
	decode(t, w, &listing)
	assert.Equal(t, "200.00", listing.PricePerNight)

	w = f.do(http.MethodGet, "/api/listings/?min_price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/listings/?max_price=100", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listings []handler.ListingResponse
	decode(t, w, &listings)
	assert.Empty(t, listings)

	w = f.do(http.MethodPost, "/api/listings/", "host-1", map[string]any{
		"title": "City loft", "location": "Addis Ababa", "price_per_night": "85.50", "max_guests": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodPost, "/api/listings/", "host-1", map[string]any{
		"title": "Free room", "location": "Addis Ababa", "price_per_night": 0, "max_guests": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserRegister_Endpoint(t *testing.T) {
	f := newFixture(t, service.PaymentConfig{})

	w := f.do(http.MethodPost, "/api/users/", "", map[string]any{"username": "abebe", "email": "abebe@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodPost, "/api/users/", "", map[string]any{"username": "abebe", "email": "abebe@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/api/users/", "", map[string]any{"username": "kebede"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
