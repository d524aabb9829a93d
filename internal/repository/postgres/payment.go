package postgres

import (
	"context"
	"database/sql"
	"errors"

	"travel/internal/domain"
	"travel/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, booking_id, amount, currency, reference, transaction_id, checkout_url, status, created_at, updated_at`

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var transactionID sql.NullString
	var checkoutURL sql.NullString

	err := row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.Currency,
		&payment.Reference,
		&transactionID,
		&checkoutURL,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.TransactionID = transactionID.String
	payment.CheckoutURL = checkoutURL.String

	return &payment, nil
}

func (r *PaymentRepository) queryMany(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, amount, currency, reference, transaction_id, checkout_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.Currency,
		payment.Reference,
		nullString(payment.TransactionID),
		nullString(payment.CheckoutURL),
		payment.Status,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	return mapError(err)
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return payment, nil
}

// GetByIDForUpdate retrieves a payment and holds a row lock on it.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return payment, nil
}

// GetPendingByBookingID retrieves the pending payment of a booking.
// Returns nil if none exists.
func (r *PaymentRepository) GetPendingByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 AND status = $2 LIMIT 1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, bookingID, domain.PaymentStatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// GetByBookingID retrieves every payment attempt of a booking, oldest first.
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at`
	return r.queryMany(ctx, query, bookingID)
}

// GetAll retrieves all payments.
func (r *PaymentRepository) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC LIMIT 100`
	return r.queryMany(ctx, query)
}

// Update updates an existing payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET amount = $1, currency = $2, transaction_id = $3, checkout_url = $4, status = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		payment.Amount,
		payment.Currency,
		nullString(payment.TransactionID),
		nullString(payment.CheckoutURL),
		payment.Status,
		payment.ID,
	).Scan(&payment.UpdatedAt)

	return mapError(err)
}

// UpdateStatus updates the status of a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1, updated_at = now() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return mapError(err)
	}

	return expectAffected(result)
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	return expectAffected(result)
}

// Ensure PaymentRepository implements repository.PaymentRepository.
var _ repository.PaymentRepository = (*PaymentRepository)(nil)
