package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travel/internal/domain"
	"travel/internal/service"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest is the HTTP request body for creating a review.
type CreateReviewRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
	BookingID string `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

// ReviewResponse is the HTTP response for review data.
type ReviewResponse struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	GuestID    string    `json:"guest_id"`
	BookingID  string    `json:"booking_id"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Comment    string    `json:"comment"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		ListingID:  r.ListingID,
		GuestID:    r.GuestID,
		BookingID:  r.BookingID,
		Rating:     r.Rating,
		Title:      r.Title,
		Comment:    r.Comment,
		IsVerified: r.IsVerified,
		CreatedAt:  r.CreatedAt,
	}
}

// Create handles POST /api/reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "listing_id and booking_id are required")
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), service.CreateReviewRequest{
		ListingID: req.ListingID,
		BookingID: req.BookingID,
		GuestID:   actorID(c),
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toReviewResponse(review))
}

// GetAll handles GET /api/reviews/?listing_id=
func (h *ReviewHandler) GetAll(c *gin.Context) {
	reviews, err := h.reviewService.ListByListing(c.Request.Context(), c.Query("listing_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, toReviewResponse(r))
	}

	c.JSON(http.StatusOK, response)
}
