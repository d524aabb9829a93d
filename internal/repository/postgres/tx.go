package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"travel/internal/repository"
)

// Transactor opens database transactions and hands out repositories bound
// to them.
type Transactor struct {
	db *sql.DB
}

// NewTransactor creates a new Transactor.
func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx runs fn inside a transaction, committing on success.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = fn(repository.Repositories{
		Users:    NewUserRepositoryWithTx(tx),
		Listings: NewListingRepositoryWithTx(tx),
		Bookings: NewBookingRepositoryWithTx(tx),
		Payments: NewPaymentRepositoryWithTx(tx),
	})
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Ensure Transactor implements repository.Transactor.
var _ repository.Transactor = (*Transactor)(nil)
