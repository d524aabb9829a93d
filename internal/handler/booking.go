package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travel/internal/domain"
	"travel/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
	paymentService *service.PaymentService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService, paymentService *service.PaymentService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		paymentService: paymentService,
	}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	ListingID    string `json:"listing_id" binding:"required"`
	UserID       string `json:"user_id" binding:"required"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
}

// UpdateBookingRequest is the HTTP request body for changing booking dates.
type UpdateBookingRequest struct {
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
}

// CreateBookingResponse is the HTTP response for creating a booking.
type CreateBookingResponse struct {
	BookingResponse
	Payment  PaymentResponse `json:"payment"`
	Warnings []string        `json:"warnings,omitempty"`
}

// InitiatePaymentResponse is the HTTP response for a successful initiation.
type InitiatePaymentResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url"`
}

func parseDates(checkIn, checkOut string) (time.Time, time.Time, bool) {
	in, err := time.Parse(domain.DateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	out, err := time.Parse(domain.DateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return in, out, true
}

// Create handles POST /api/bookings/
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "listing_id, user_id, check_in_date and check_out_date are required")
		return
	}

	checkIn, checkOut, ok := parseDates(req.CheckInDate, req.CheckOutDate)
	if !ok {
		respondBadRequest(c, "dates must use the YYYY-MM-DD format")
		return
	}

	result, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		ListingID: req.ListingID,
		UserID:    req.UserID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateBookingResponse{
		BookingResponse: newBookingResponse(result.Booking),
		Payment:         newPaymentResponse(result.Payment),
		Warnings:        result.Warnings,
	})
}

// Get handles GET /api/bookings/:id/
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// GetAll handles GET /api/bookings/
func (h *BookingHandler) GetAll(c *gin.Context) {
	bookings, err := h.bookingService.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, newBookingResponse(b))
	}

	respondJSON(c, http.StatusOK, response)
}

// Update handles PUT /api/bookings/:id/
func (h *BookingHandler) Update(c *gin.Context) {
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "check_in_date and check_out_date are required")
		return
	}

	checkIn, checkOut, ok := parseDates(req.CheckInDate, req.CheckOutDate)
	if !ok {
		respondBadRequest(c, "dates must use the YYYY-MM-DD format")
		return
	}

	booking, err := h.bookingService.UpdateBooking(c.Request.Context(), service.UpdateBookingRequest{
		BookingID: c.Param("id"),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// Cancel handles POST /api/bookings/:id/cancel/
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// Delete handles DELETE /api/bookings/:id/
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.bookingService.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// InitiatePayment handles POST /api/bookings/:id/initiate_payment/
func (h *BookingHandler) InitiatePayment(c *gin.Context) {
	result, err := h.paymentService.InitiateBookingPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newInitiatePaymentResponse(result))
}

func newInitiatePaymentResponse(result *service.InitiateResult) InitiatePaymentResponse {
	return InitiatePaymentResponse{
		Status:     "success",
		Message:    "Payment initiated successfully",
		PaymentID:  result.Payment.ID,
		PaymentURL: result.CheckoutURL,
	}
}
