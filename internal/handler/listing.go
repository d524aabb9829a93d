package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

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

// ListingRequest is the HTTP request body for creating or replacing a listing.
type ListingRequest struct {
	HostID        string          `json:"host_id" binding:"required"`
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
}

func (r ListingRequest) input() service.ListingInput {
	return service.ListingInput{
		HostID:        r.HostID,
		Title:         r.Title,
		Description:   r.Description,
		PricePerNight: r.PricePerNight,
	}
}

// Create handles POST /api/listings/
func (h *ListingHandler) Create(c *gin.Context) {
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newListingResponse(listing))
}

// Get handles GET /api/listings/:id/
func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.listingService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newListingResponse(listing))
}

// GetAll handles GET /api/listings/
func (h *ListingHandler) GetAll(c *gin.Context) {
	listings, err := h.listingService.ListListings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		response = append(response, newListingResponse(l))
	}

	respondJSON(c, http.StatusOK, response)
}

// Update handles PUT /api/listings/:id/
func (h *ListingHandler) Update(c *gin.Context) {
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newListingResponse(listing))
}

// Delete handles DELETE /api/listings/:id/
func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.listingService.DeleteListing(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
