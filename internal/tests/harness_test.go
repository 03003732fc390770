package tests

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"travel/internal/domain"
	"travel/internal/service"
)

const (
	hostID     = "host-1"
	guestID    = "guest-1"
	strangerID = "stranger-1"
	listingID  = "listing-1"
)

// harness wires every service to the in-memory fakes.
type harness struct {
	users    *MockUserRepository
	listings *MockListingRepository
	bookings *MockBookingRepository
	reviews  *MockReviewRepository
	payments *MockPaymentRepository
	tx       *MockTransactor
	cache    *MockListingCache
	locks    *MockLockStore
	gateway  *MockGateway
	email    *MockEmailSender

	userService    *service.UserService
	listingService *service.ListingService
	bookingService *service.BookingService
	reviewService  *service.ReviewService
	paymentService *service.PaymentService
}

func newHarness(t *testing.T, cfg service.PaymentConfig) *harness {
	t.Helper()

	logger := zaptest.NewLogger(t)

	h := &harness{
		users:    NewMockUserRepository(),
		listings: NewMockListingRepository(),
		cache:    NewMockListingCache(),
		locks:    NewMockLockStore(),
		gateway:  NewMockGateway(),
		email:    NewMockEmailSender(),
		reviews:  NewMockReviewRepository(),
	}
	h.bookings = NewMockBookingRepository(h.listings)
	h.payments = NewMockPaymentRepository(h.bookings)
	h.tx = &MockTransactor{Listings: h.listings, Bookings: h.bookings, Payments: h.payments}

	notificationService := service.NewNotificationService(h.email, logger)

	h.userService = service.NewUserService(h.users)
	h.listingService = service.NewListingService(h.listings, h.users, h.cache, logger)
	h.bookingService = service.NewBookingService(h.tx, h.bookings, h.listings, h.locks, logger)
	h.reviewService = service.NewReviewService(h.reviews, h.bookings)
	h.paymentService = service.NewPaymentService(cfg, h.gateway, h.tx, h.payments, h.bookings, h.listings, h.users, notificationService, logger)

	h.users.AddUser(&domain.User{ID: hostID, Username: "host", Email: "host@example.com", FirstName: "Hana", LastName: "Host"})
	h.users.AddUser(&domain.User{ID: guestID, Username: "guest", Email: "guest@example.com", FirstName: "Gedion", LastName: "Guest"})
	h.users.AddUser(&domain.User{ID: strangerID, Username: "stranger", Email: "stranger@example.com"})

	h.listings.AddListing(&domain.Listing{
		ID:            listingID,
		HostID:        hostID,
		Title:         "Lakeside cabin",
		Location:      "Bishoftu",
		PricePerNight: decimal.RequireFromString("200.00"),
		MaxGuests:     4,
		Bedrooms:      2,
		Bathrooms:     1,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	})

	return h
}

// addBooking stores a booking on the default listing.
func (h *harness) addBooking(id string, status domain.BookingStatus, checkIn, checkOut string) *domain.Booking {
	booking := &domain.Booking{
		ID:             id,
		ListingID:      listingID,
		GuestID:        guestID,
		CheckInDate:    day(checkIn),
		CheckOutDate:   day(checkOut),
		NumberOfGuests: 2,
		Status:         status,
		TotalPrice:     decimal.RequireFromString("200.00").Mul(decimal.NewFromInt(int64(domain.Nights(day(checkIn), day(checkOut))))),
		CreatedAt:      time.Now().UTC(),
	}
	h.bookings.AddBooking(booking)
	return booking
}

// addPendingPayment stores a pending payment the gateway reports as pending.
func (h *harness) addPendingPayment(reference string, booking *domain.Booking) *domain.Payment {
	payment := &domain.Payment{
		ID:               "payment-" + reference,
		BookingID:        booking.ID,
		PaymentReference: reference,
		Amount:           booking.TotalPrice,
		Currency:         domain.DefaultCurrency,
		Status:           domain.PaymentStatusPending,
		CustomerEmail:    "guest@example.com",
		CustomerName:     "Gedion Guest",
		CreatedAt:        time.Now().UTC(),
	}
	h.payments.AddPayment(payment)
	h.gateway.SetStatus(reference, "pending")
	return payment
}

func day(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func validCustomer() domain.Customer {
	return domain.Customer{
		FirstName: "Gedion",
		LastName:  "Guest",
		Email:     "guest@example.com",
		Phone:     "0911000000",
	}
}
