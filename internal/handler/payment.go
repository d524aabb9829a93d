package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for opening a payment.
type CreatePaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

// UpdatePaymentRequest is the HTTP request body for editing a payment.
type UpdatePaymentRequest struct {
	Currency string `json:"currency" binding:"required"`
}

// VerifyPaymentResponse is the HTTP response for a successful verification.
type VerifyPaymentResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Payment  PaymentResponse `json:"payment"`
	Booking  BookingResponse `json:"booking"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Create handles POST /api/payments/
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "booking_id is required")
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newPaymentResponse(payment))
}

// Get handles GET /api/payments/:id/
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPaymentResponse(payment))
}

// GetAll handles GET /api/payments/?booking_id=
func (h *PaymentHandler) GetAll(c *gin.Context) {
	payments, err := h.paymentService.ListPayments(c.Request.Context(), c.Query("booking_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, newPaymentResponse(p))
	}

	respondJSON(c, http.StatusOK, response)
}

// Update handles PUT /api/payments/:id/
func (h *PaymentHandler) Update(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "currency is required")
		return
	}

	payment, err := h.paymentService.UpdatePaymentCurrency(c.Request.Context(), c.Param("id"), req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPaymentResponse(payment))
}

// Delete handles DELETE /api/payments/:id/
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.paymentService.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// InitiatePayment handles POST /api/payments/:id/initiate_payment/
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	result, err := h.paymentService.InitiatePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newInitiatePaymentResponse(result))
}

// VerifyPayment handles POST /api/payments/:id/verify_payment/
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	result, err := h.paymentService.VerifyPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, VerifyPaymentResponse{
		Status:   "success",
		Message:  "Payment verified successfully",
		Payment:  newPaymentResponse(result.Payment),
		Booking:  newBookingResponse(result.Booking),
		Warnings: result.Warnings,
	})
}
