package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel/internal/gateway"
	"travel/internal/repository"
	"travel/internal/service"
)

// ErrorResponse represents an error response. Details carries the payment
// gateway's answer verbatim when it rejected a request.
type ErrorResponse struct {
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	resp := ErrorResponse{Status: "error", Error: err.Error()}

	var be *gateway.BusinessError
	if errors.As(err, &be) {
		resp.Details = be.Details
	}

	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		resp.Error = "internal server error"
	}

	c.JSON(code, resp)
}

// respondBadRequest sends a 400 with a fixed message.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Status: "error", Error: message})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository/gateway errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var be *gateway.BusinessError

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidListingID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidDates),
		errors.Is(err, service.ErrInvalidTotalPrice),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidCurrency):
		return http.StatusBadRequest

	// Precondition errors
	case errors.Is(err, service.ErrMissingTransactionID):
		return http.StatusBadRequest

	// Gateway answered with a rejection
	case errors.As(err, &be):
		return http.StatusBadRequest

	// Gateway unreachable
	case errors.Is(err, gateway.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Conflict errors
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrPaymentFinalized),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrPendingPaymentExists),
		errors.Is(err, service.ErrPaymentAlreadyInitiated),
		errors.Is(err, service.ErrPaymentCompleted),
		errors.Is(err, service.ErrBookingNotPending),
		errors.Is(err, service.ErrBookingAlreadyCancelled),
		errors.Is(err, service.ErrBookingHasCompletedPayment):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
