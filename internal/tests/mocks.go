// Package tests provides in-memory fakes of repositories, Redis stores and
// external collaborators, plus cross-service scenario tests.
package tests

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"travel/internal/chapa"
	"travel/internal/domain"
	"travel/internal/redis"
	"travel/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Error injection
	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LISTING REPOSITORY
// ──────────────────────────────────────────────

// MockListingRepository is a mock implementation of ListingRepository.
type MockListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing

	// Counters for verification
	GetByIDCallCount      int32
	GetForUpdateCallCount int32
	UpdateCallCount       int32
	DeactivateCallCount   int32
}

// NewMockListingRepository creates a new mock listing repository.
func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{listings: make(map[string]*domain.Listing)}
}

// AddListing adds a listing to the mock repository.
func (m *MockListingRepository) AddListing(listing *domain.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[listing.ID] = listing
}

// GetListing returns a listing for test assertions.
func (m *MockListingRepository) GetListing(id string) *domain.Listing {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listings[id]
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *listing
	m.listings[listing.ID] = &copy
	return nil
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	return m.get(id)
}

func (m *MockListingRepository) GetForUpdate(ctx context.Context, id string) (*domain.Listing, error) {
	atomic.AddInt32(&m.GetForUpdateCallCount, 1)
	return m.get(id)
}

func (m *MockListingRepository) get(id string) (*domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	listing, ok := m.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *listing
	return &copy, nil
}

func (m *MockListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Listing
	for _, l := range m.listings {
		if !l.IsActive {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.MinPrice.Valid && l.PricePerNight.LessThan(filter.MinPrice.Decimal) {
			continue
		}
		if filter.MaxPrice.Valid && l.PricePerNight.GreaterThan(filter.MaxPrice.Decimal) {
			continue
		}
		if filter.HostID != "" && l.HostID != filter.HostID {
			continue
		}
		copy := *l
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[listing.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *listing
	m.listings[listing.ID] = &copy
	return nil
}

func (m *MockListingRepository) Deactivate(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeactivateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	listing, ok := m.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	listing.IsActive = false
	return nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
	listings *MockListingRepository

	// Counters for verification
	CreateCallCount     int32
	TransitionCallCount int32

	// Error injection
	CreateError error
}

// NewMockBookingRepository creates a new mock booking repository. listings
// resolves hosts for ListByHost.
func NewMockBookingRepository(listings *MockListingRepository) *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
		listings: listings,
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

// GetBooking returns a booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// CountBookings returns the number of stored bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domain.Booking, error) {
	return m.filter(func(b *domain.Booking) bool { return b.GuestID == guestID }), nil
}

func (m *MockBookingRepository) ListByHost(ctx context.Context, hostID string) ([]*domain.Booking, error) {
	return m.filter(func(b *domain.Booking) bool {
		listing := m.listings.GetListing(b.ListingID)
		return listing != nil && listing.HostID == hostID
	}), nil
}

func (m *MockBookingRepository) filter(keep func(*domain.Booking) bool) []*domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if keep(b) {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (m *MockBookingRepository) TransitionStatus(ctx context.Context, id string, to domain.BookingStatus, from ...domain.BookingStatus) (bool, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if booking.Status != f {
			continue
		}
		if to == domain.BookingStatusConfirmed && m.overlapLocked(booking.ListingID, booking.CheckInDate, booking.CheckOutDate, booking.ID) {
			return false, repository.ErrOverlap
		}
		booking.Status = to
		booking.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (m *MockBookingRepository) HasConfirmedOverlap(ctx context.Context, listingID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overlapLocked(listingID, checkIn, checkOut, excludeID), nil
}

func (m *MockBookingRepository) overlapLocked(listingID string, checkIn, checkOut time.Time, excludeID string) bool {
	for _, b := range m.bookings {
		if b.ID == excludeID || b.ListingID != listingID || b.Status != domain.BookingStatusConfirmed {
			continue
		}
		if b.Overlaps(checkIn, checkOut) {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK REVIEW REPOSITORY
// ──────────────────────────────────────────────

// MockReviewRepository is a mock implementation of ReviewRepository.
type MockReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review

	// Counters for verification
	CreateCallCount int32
}

// NewMockReviewRepository creates a new mock review repository.
func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{reviews: make(map[string]*domain.Review)}
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.BookingID == review.BookingID {
			return fmt.Errorf("%w: reviews_booking_id_key", repository.ErrDuplicate)
		}
	}
	copy := *review
	m.reviews[review.ID] = &copy
	return nil
}

func (m *MockReviewRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reviews {
		if r.BookingID == bookingID {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockReviewRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Review
	for _, r := range m.reviews {
		if r.ListingID == listingID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment // keyed by payment reference
	bookings *MockBookingRepository

	// Counters for verification
	CreateCallCount     int32
	TransitionCallCount int32

	// Error injection
	CreateError     error
	TransitionError error
}

// NewMockPaymentRepository creates a new mock payment repository. bookings
// resolves guests for ListByGuest.
func NewMockPaymentRepository(bookings *MockBookingRepository) *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
		bookings: bookings,
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.PaymentReference] = payment
}

// GetPayment returns a payment for test assertions.
func (m *MockPaymentRepository) GetPayment(reference string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[reference]
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.BookingID == payment.BookingID && isActive(p.Status) {
			return fmt.Errorf("%w: payments_one_active_per_booking", repository.ErrDuplicate)
		}
	}
	copy := *payment
	m.payments[payment.PaymentReference] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[reference]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetActiveByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.BookingID == bookingID && isActive(p.Status) {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) ListByGuest(ctx context.Context, guestID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		booking := m.bookings.GetBooking(p.BookingID)
		if booking != nil && booking.GuestID == guestID {
			copy := *p
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockPaymentRepository) RecordVerificationAttempt(ctx context.Context, reference string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[reference]
	if !ok {
		return repository.ErrNotFound
	}
	payment.VerificationAttempts++
	payment.LastVerificationAt = &at
	return nil
}

func (m *MockPaymentRepository) Transition(ctx context.Context, t domain.PaymentTransition) (bool, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	if m.TransitionError != nil {
		return false, m.TransitionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[t.PaymentReference]
	if !ok || payment.Status != domain.PaymentStatusPending {
		return false, nil
	}
	payment.Status = t.To
	if t.TransactionID != "" {
		payment.TransactionID = t.TransactionID
	}
	if len(t.GatewayResponse) > 0 {
		payment.GatewayResponse = t.GatewayResponse
	}
	payment.FailureReason = t.FailureReason
	payment.WebhookVerified = payment.WebhookVerified || t.WebhookVerified
	if t.To == domain.PaymentStatusSuccess {
		at := t.At
		payment.PaidAt = &at
	}
	payment.UpdatedAt = t.At
	return true, nil
}

func isActive(status domain.PaymentStatus) bool {
	return status == domain.PaymentStatusPending || status == domain.PaymentStatusSuccess
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs fn against the in-memory repositories. Writes made
// before an error are not rolled back.
type MockTransactor struct {
	Listings *MockListingRepository
	Bookings *MockBookingRepository
	Payments *MockPaymentRepository

	// Counters for verification
	CallCount int32

	// Error injection
	BeginError error
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	atomic.AddInt32(&m.CallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(ctx, repository.Stores{
		Listings: m.Listings,
		Bookings: m.Bookings,
		Payments: m.Payments,
	})
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockListingCache is a mock implementation of redis.ListingCacheInterface.
type MockListingCache struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing

	// Counters for verification
	HitCount          int32
	MissCount         int32
	InvalidationCount int32

	// Error injection
	GetError error
}

// NewMockListingCache creates a new mock listing cache.
func NewMockListingCache() *MockListingCache {
	return &MockListingCache{listings: make(map[string]*domain.Listing)}
}

// Has reports whether the listing is cached.
func (m *MockListingCache) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.listings[id]
	return ok
}

func (m *MockListingCache) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	listing, ok := m.listings[listingID]
	if !ok {
		atomic.AddInt32(&m.MissCount, 1)
		return nil, nil
	}
	atomic.AddInt32(&m.HitCount, 1)
	copy := *listing
	return &copy, nil
}

func (m *MockListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *listing
	m.listings[listing.ID] = &copy
	return nil
}

func (m *MockListingCache) InvalidateListing(ctx context.Context, listingID string) error {
	atomic.AddInt32(&m.InvalidationCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, listingID)
	return nil
}

// MockLockStore is a mock implementation of redis.LockStoreInterface.
type MockLockStore struct {
	mu     sync.Mutex
	locks  map[string]string // listing ID -> holder token
	tokens int64

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]string)}
}

// Hold marks the listing lock as held by someone else.
func (m *MockLockStore) Hold(listingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[listingID] = "held-elsewhere"
}

// IsLocked reports whether the listing lock is held.
func (m *MockLockStore) IsLocked(listingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.locks[listingID]
	return ok
}

func (m *MockLockStore) AcquireListingLock(ctx context.Context, listingID string, ttl time.Duration) (string, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[listingID]; held {
		return "", nil
	}
	token := fmt.Sprintf("token-%d", atomic.AddInt64(&m.tokens, 1))
	m.locks[listingID] = token
	return token, nil
}

func (m *MockLockStore) ReleaseListingLock(ctx context.Context, listingID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[listingID] == token {
		delete(m.locks, listingID)
	}
	return nil
}

// Ensure mocks implement interfaces.
var (
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.ListingRepository = (*MockListingRepository)(nil)
	_ repository.BookingRepository = (*MockBookingRepository)(nil)
	_ repository.ReviewRepository  = (*MockReviewRepository)(nil)
	_ repository.PaymentRepository = (*MockPaymentRepository)(nil)
	_ repository.Transactor        = (*MockTransactor)(nil)
	_ redis.ListingCacheInterface  = (*MockListingCache)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
)

// ──────────────────────────────────────────────
// MOCK GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a mock payment gateway.
type MockGateway struct {
	mu       sync.Mutex
	statuses map[string]string // tx_ref -> gateway status

	// Counters for verification
	InitializeCallCount int32
	VerifyCallCount     int32

	// LastInitialize holds the most recent initialize request.
	LastInitialize chapa.InitializeRequest

	// Error injection
	InitializeError error
	VerifyError     error
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{statuses: make(map[string]string)}
}

// SetStatus sets the status Verify reports for a transaction.
func (m *MockGateway) SetStatus(txRef, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[txRef] = status
}

func (m *MockGateway) Initialize(ctx context.Context, req chapa.InitializeRequest) (*chapa.InitializeResponse, error) {
	atomic.AddInt32(&m.InitializeCallCount, 1)
	m.mu.Lock()
	m.LastInitialize = req
	m.mu.Unlock()
	if m.InitializeError != nil {
		return nil, m.InitializeError
	}
	m.SetStatus(req.TxRef, chapa.StatusPending)
	url := "https://checkout.chapa.co/checkout/payment/" + req.TxRef
	return &chapa.InitializeResponse{
		CheckoutURL: url,
		Raw:         []byte(`{"checkout_url":"` + url + `"}`),
	}, nil
}

func (m *MockGateway) Verify(ctx context.Context, txRef string) (*chapa.VerifyResponse, error) {
	atomic.AddInt32(&m.VerifyCallCount, 1)
	if m.VerifyError != nil {
		return nil, m.VerifyError
	}
	m.mu.Lock()
	status, ok := m.statuses[txRef]
	m.mu.Unlock()
	if !ok {
		return nil, &chapa.APIError{StatusCode: 404, Message: "Invalid transaction or Transaction not found"}
	}
	return &chapa.VerifyResponse{
		Transaction: chapa.Transaction{TxRef: txRef, Reference: "CH-" + txRef, Status: status},
		Raw:         []byte(`{"status":"` + status + `"}`),
	}, nil
}

// ──────────────────────────────────────────────
// MOCK EMAIL SENDER
// ──────────────────────────────────────────────

// SentEmail records one Send call.
type SentEmail struct {
	Template  string
	Recipient string
	Data      map[string]any
}

// MockEmailSender records emails instead of sending them.
type MockEmailSender struct {
	mu   sync.Mutex
	sent []SentEmail

	// Error injection
	SendError error
}

// NewMockEmailSender creates a new mock email sender.
func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) Send(ctx context.Context, template, recipient string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentEmail{Template: template, Recipient: recipient, Data: data})
	return m.SendError
}

// Sent returns the recorded emails.
func (m *MockEmailSender) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.sent...)
}
