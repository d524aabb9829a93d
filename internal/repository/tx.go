package repository

import "context"

// Repositories groups the repositories bound to one transaction.
type Repositories struct {
	Users    UserRepository
	Listings ListingRepository
	Bookings BookingRepository
	Payments PaymentRepository
}

// Transactor runs fn inside a single database transaction. The transaction
// is committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
