package tests

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel/internal/domain"
	"travel/internal/service"
)

const testBaseURL = "https://travel.example"

func date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// seed adds the guest and the listing used across workflow tests.
func seed(f *Fixture) (*domain.User, *domain.Listing) {
	user := &domain.User{
		ID:        "user-1",
		Email:     "guest@example.com",
		FirstName: "Abebe",
		LastName:  "Kebede",
		CreatedAt: time.Now().UTC(),
	}
	host := &domain.User{
		ID:        "host-1",
		Email:     "host@example.com",
		FirstName: "Sara",
		CreatedAt: time.Now().UTC(),
	}
	listing := &domain.Listing{
		ID:            "listing-1",
		HostID:        host.ID,
		Title:         "Lakeside cabin",
		PricePerNight: decimal.RequireFromString("100.00"),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	f.Store.AddUser(user)
	f.Store.AddUser(host)
	f.Store.AddListing(listing)
	return user, listing
}

func newBookingService(f *Fixture) *service.BookingService {
	return service.NewBookingService(f.Tx, f.Bookings, f.Listings, f.Users, f.Dispatcher, "ETB", zap.NewNop())
}

func newPaymentService(f *Fixture) *service.PaymentService {
	return service.NewPaymentService(
		f.Tx, f.Payments, f.Bookings, f.Listings, f.Users,
		f.Gateway, f.Locks, f.Dispatcher,
		service.PaymentOptions{Currency: "ETB", LockTTL: time.Minute, PublicBaseURL: testBaseURL},
		zap.NewNop(),
	)
}

// createBooking books listing-1 for 2024-06-01..2024-06-05 (400.00 ETB).
func createBooking(t *testing.T, f *Fixture) *service.CreateBookingResult {
	t.Helper()
	result, err := newBookingService(f).CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID: "listing-1",
		UserID:    "user-1",
		CheckIn:   date("2024-06-01"),
		CheckOut:  date("2024-06-05"),
	})
	require.NoError(t, err)
	return result
}
