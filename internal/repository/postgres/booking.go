package postgres

import (
	"context"
	"database/sql"

	"travel/internal/domain"
	"travel/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, listing_id, user_id, check_in_date, check_out_date, total_price, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	err := row.Scan(
		&booking.ID,
		&booking.ListingID,
		&booking.UserID,
		&booking.CheckInDate,
		&booking.CheckOutDate,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, listing_id, user_id, check_in_date, check_out_date, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		booking.ID,
		booking.ListingID,
		booking.UserID,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.TotalPrice,
		booking.Status,
	).Scan(&booking.CreatedAt)

	return mapError(err)
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return booking, nil
}

// GetByIDForUpdate retrieves a booking and holds a row lock on it.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return booking, nil
}

// GetAll retrieves all bookings.
func (r *BookingRepository) GetAll(ctx context.Context) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// Update updates an existing booking.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET listing_id = $1, user_id = $2, check_in_date = $3, check_out_date = $4, total_price = $5, status = $6
		WHERE id = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.ListingID,
		booking.UserID,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.TotalPrice,
		booking.Status,
		booking.ID,
	)
	if err != nil {
		return mapError(err)
	}

	return expectAffected(result)
}

// UpdateStatus updates the status of a booking.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE bookings SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return mapError(err)
	}

	return expectAffected(result)
}

// Delete removes a booking. Payments are removed by ON DELETE CASCADE.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	return expectAffected(result)
}

// Ensure BookingRepository implements repository.BookingRepository.
var _ repository.BookingRepository = (*BookingRepository)(nil)
