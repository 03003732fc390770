package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travel/internal/domain"
	"travel/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	ListingID       string `json:"listing_id" binding:"required"`
	CheckInDate     string `json:"check_in_date" binding:"required"`
	CheckOutDate    string `json:"check_out_date" binding:"required"`
	NumberOfGuests  int    `json:"number_of_guests"`
	SpecialRequests string `json:"special_requests"`
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID              string    `json:"id"`
	ListingID       string    `json:"listing_id"`
	GuestID         string    `json:"guest_id"`
	CheckInDate     string    `json:"check_in_date"`
	CheckOutDate    string    `json:"check_out_date"`
	Nights          int       `json:"nights"`
	NumberOfGuests  int       `json:"number_of_guests"`
	Status          string    `json:"status"`
	TotalPrice      string    `json:"total_price"`
	SpecialRequests string    `json:"special_requests"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		ListingID:       b.ListingID,
		GuestID:         b.GuestID,
		CheckInDate:     b.CheckInDate.Format(domain.DateLayout),
		CheckOutDate:    b.CheckOutDate.Format(domain.DateLayout),
		Nights:          b.Nights(),
		NumberOfGuests:  b.NumberOfGuests,
		Status:          string(b.Status),
		TotalPrice:      b.TotalPrice.StringFixed(2),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// Create handles POST /api/bookings/
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "listing_id, check_in_date and check_out_date are required")
		return
	}

	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		badRequest(c, "check_in_date must be YYYY-MM-DD")
		return
	}

	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		badRequest(c, "check_out_date must be YYYY-MM-DD")
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), service.CreateBookingRequest{
		ListingID:       req.ListingID,
		GuestID:         actorID(c),
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		NumberOfGuests:  req.NumberOfGuests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// GetAll handles GET /api/bookings/
func (h *BookingHandler) GetAll(c *gin.Context) {
	bookings, err := h.bookingService.List(c.Request.Context(), actorID(c), service.BookingRole(c.Query("role")))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/bookings/:id/
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// Confirm handles POST /api/bookings/:id/confirm/
func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.bookingService.Confirm)
}

// Cancel handles POST /api/bookings/:id/cancel/
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.bookingService.Cancel)
}

// Complete handles POST /api/bookings/:id/complete/
func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.bookingService.Complete)
}

func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, bookingID, actorID string) (*domain.Booking, error)) {
	booking, err := fn(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}
