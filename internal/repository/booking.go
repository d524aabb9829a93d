package repository

import (
	"context"

	"travel/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByIDForUpdate retrieves a booking and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error)

	// GetAll retrieves all bookings.
	GetAll(ctx context.Context) ([]*domain.Booking, error)

	// Update updates an existing booking.
	Update(ctx context.Context, booking *domain.Booking) error

	// UpdateStatus updates the status of a booking.
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error

	// Delete removes a booking together with its payment attempts.
	Delete(ctx context.Context, id string) error
}
