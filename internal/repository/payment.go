package repository

import (
	"context"

	"travel/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment. Returns ErrConflict if the booking
	// already has a pending payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByIDForUpdate retrieves a payment and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error)

	// GetPendingByBookingID retrieves the pending payment of a booking.
	// Returns nil if the booking has no pending payment.
	GetPendingByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)

	// GetByBookingID retrieves every payment attempt of a booking.
	GetByBookingID(ctx context.Context, bookingID string) ([]*domain.Payment, error)

	// GetAll retrieves all payments.
	GetAll(ctx context.Context) ([]*domain.Payment, error)

	// Update updates an existing payment.
	Update(ctx context.Context, payment *domain.Payment) error

	// UpdateStatus updates the status of a payment.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	// Delete removes a payment.
	Delete(ctx context.Context, id string) error
}
