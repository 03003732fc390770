package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"travel/internal/domain"
	"travel/internal/service"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	listingService *service.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// CreateListingRequest is the HTTP request body for creating a listing.
type CreateListingRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	Location      string          `json:"location" binding:"required"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	MaxGuests     int             `json:"max_guests"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	Amenities     []string        `json:"amenities"`
}

// UpdateListingRequest is the HTTP request body for a partial listing update.
type UpdateListingRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Location      *string          `json:"location"`
	PricePerNight *decimal.Decimal `json:"price_per_night"`
	MaxGuests     *int             `json:"max_guests"`
	Bedrooms      *int             `json:"bedrooms"`
	Bathrooms     *int             `json:"bathrooms"`
	Amenities     []string         `json:"amenities"`
}

// ListingResponse is the HTTP response for listing data.
type ListingResponse struct {
	ID            string    `json:"id"`
	HostID        string    `json:"host_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	PricePerNight string    `json:"price_per_night"`
	MaxGuests     int       `json:"max_guests"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	Amenities     []string  `json:"amenities"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toListingResponse(l *domain.Listing) ListingResponse {
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return ListingResponse{
		ID:            l.ID,
		HostID:        l.HostID,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: l.PricePerNight.StringFixed(2),
		MaxGuests:     l.MaxGuests,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		Amenities:     amenities,
		IsActive:      l.IsActive,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// Create handles POST /api/listings/
func (h *ListingHandler) Create(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), service.CreateListingRequest{
		HostID:        actorID(c),
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Amenities:     req.Amenities,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toListingResponse(listing))
}

// GetAll handles GET /api/listings/
func (h *ListingHandler) GetAll(c *gin.Context) {
	filter := domain.ListingFilter{
		Location: c.Query("location"),
		HostID:   c.Query("host"),
	}

	for param, dst := range map[string]*decimal.NullDecimal{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(c, param+" must be a number")
			return
		}
		*dst = decimal.NewNullDecimal(d)
	}

	listings, err := h.listingService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		response = append(response, toListingResponse(l))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/listings/:id/
func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.listingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toListingResponse(listing))
}

// Update handles PATCH /api/listings/:id/
func (h *ListingHandler) Update(c *gin.Context) {
	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), c.Param("id"), actorID(c), service.UpdateListingRequest{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Amenities:     req.Amenities,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toListingResponse(listing))
}

// Delete handles DELETE /api/listings/:id/
func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.listingService.Deactivate(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
