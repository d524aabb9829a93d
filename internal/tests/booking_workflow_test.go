package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel/internal/domain"
	"travel/internal/repository"
	"travel/internal/service"
)

func TestCreateBooking_CreatesBookingWithOnePendingPayment(t *testing.T) {
	f := NewFixture()
	seed(f)

	result := createBooking(t, f)

	booking := f.Store.GetBooking(result.Booking.ID)
	require.NotNil(t, booking)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.True(t, booking.TotalPrice.Equal(decimal.RequireFromString("400.00")))

	payments := f.Store.PaymentsForBooking(booking.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentStatusPending, payments[0].Status)
	assert.True(t, payments[0].Amount.Equal(booking.TotalPrice))
	assert.Equal(t, "ETB", payments[0].Currency)
	assert.NotEmpty(t, payments[0].Reference)
	assert.Empty(t, payments[0].TransactionID)
	assert.Empty(t, payments[0].CheckoutURL)
	assert.Empty(t, result.Warnings)
}

func TestCreateBooking_EnqueuesConfirmationEmail(t *testing.T) {
	f := NewFixture()
	seed(f)

	result := createBooking(t, f)

	messages := f.Dispatcher.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, service.BookingConfirmation{
		BookingID:    result.Booking.ID,
		UserEmail:    "guest@example.com",
		ListingTitle: "Lakeside cabin",
	}, messages[0])
}

func TestCreateBooking_RejectsInvalidDates(t *testing.T) {
	testCases := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{"same day", "2024-06-01", "2024-06-01"},
		{"reversed", "2024-06-05", "2024-06-01"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFixture()
			seed(f)

			_, err := newBookingService(f).CreateBooking(context.Background(), service.CreateBookingRequest{
				ListingID: "listing-1",
				UserID:    "user-1",
				CheckIn:   date(tc.checkIn),
				CheckOut:  date(tc.checkOut),
			})

			assert.ErrorIs(t, err, service.ErrInvalidDates)
			assert.Equal(t, 0, f.Store.CountBookings())
			assert.Equal(t, 0, f.Store.CountPayments())
		})
	}
}

func TestCreateBooking_UnknownReferences(t *testing.T) {
	f := NewFixture()
	seed(f)
	svc := newBookingService(f)

	_, err := svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID: "missing",
		UserID:    "user-1",
		CheckIn:   date("2024-06-01"),
		CheckOut:  date("2024-06-05"),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID: "listing-1",
		UserID:    "missing",
		CheckIn:   date("2024-06-01"),
		CheckOut:  date("2024-06-05"),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, f.Store.CountBookings())
}

func TestCreateBooking_RejectsNonPositiveTotal(t *testing.T) {
	f := NewFixture()
	seed(f)
	f.Store.AddListing(&domain.Listing{ID: "free", HostID: "host-1", Title: "Free tent", PricePerNight: decimal.Zero})

	_, err := newBookingService(f).CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID: "free",
		UserID:    "user-1",
		CheckIn:   date("2024-06-01"),
		CheckOut:  date("2024-06-05"),
	})

	assert.ErrorIs(t, err, service.ErrInvalidTotalPrice)
}

func TestCreateBooking_PaymentFailureRollsBackBooking(t *testing.T) {
	f := NewFixture()
	seed(f)
	f.Payments.CreateError = errors.New("db down")

	_, err := newBookingService(f).CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID: "listing-1",
		UserID:    "user-1",
		CheckIn:   date("2024-06-01"),
		CheckOut:  date("2024-06-05"),
	})

	require.Error(t, err)
	assert.Equal(t, 0, f.Store.CountBookings())
	assert.Equal(t, int32(1), f.Tx.RollbackCount)
	assert.Empty(t, f.Dispatcher.Messages())
}

func TestCreateBooking_EnqueueFailureIsOnlyAWarning(t *testing.T) {
	f := NewFixture()
	seed(f)
	f.Dispatcher.EnqueueError = errors.New("redis down")

	result := createBooking(t, f)

	assert.NotNil(t, f.Store.GetBooking(result.Booking.ID))
	assert.Len(t, result.Warnings, 1)
}

func TestUpdateBooking_RecomputesTotalAndSyncsPayment(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)

	updated, err := newBookingService(f).UpdateBooking(context.Background(), service.UpdateBookingRequest{
		BookingID: created.Booking.ID,
		CheckIn:   date("2024-06-01"),
		CheckOut:  date("2024-06-03"),
	})

	require.NoError(t, err)
	assert.True(t, updated.TotalPrice.Equal(decimal.RequireFromString("200.00")))
	payment := f.Store.GetPayment(created.Payment.ID)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("200.00")))
}

func TestUpdateBooking_KeepsInitiatedPaymentAmount(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	_, err := newPaymentService(f).InitiatePayment(context.Background(), created.Payment.ID)
	require.NoError(t, err)

	_, err = newBookingService(f).UpdateBooking(context.Background(), service.UpdateBookingRequest{
		BookingID: created.Booking.ID,
		CheckIn:   date("2024-06-01"),
		CheckOut:  date("2024-06-03"),
	})

	require.NoError(t, err)
	payment := f.Store.GetPayment(created.Payment.ID)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("400.00")))
}

func TestUpdateBooking_RejectsConfirmedBooking(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	require.NoError(t, f.Bookings.UpdateStatus(context.Background(), created.Booking.ID, domain.BookingStatusConfirmed))

	_, err := newBookingService(f).UpdateBooking(context.Background(), service.UpdateBookingRequest{
		BookingID: created.Booking.ID,
		CheckIn:   date("2024-06-01"),
		CheckOut:  date("2024-06-03"),
	})

	assert.ErrorIs(t, err, service.ErrBookingNotPending)
}

func TestCancelBooking_FailsPendingPayment(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newBookingService(f)

	booking, err := svc.CancelBooking(context.Background(), created.Booking.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	assert.Equal(t, domain.PaymentStatusFailed, f.Store.GetPayment(created.Payment.ID).Status)

	_, err = svc.CancelBooking(context.Background(), created.Booking.ID)
	assert.ErrorIs(t, err, service.ErrBookingAlreadyCancelled)
}

func TestDeleteBooking(t *testing.T) {
	f := NewFixture()
	seed(f)
	svc := newBookingService(f)

	unpaid := createBooking(t, f)
	require.NoError(t, svc.DeleteBooking(context.Background(), unpaid.Booking.ID))
	assert.Nil(t, f.Store.GetBooking(unpaid.Booking.ID))
	assert.Nil(t, f.Store.GetPayment(unpaid.Payment.ID))

	paid := createBooking(t, f)
	require.NoError(t, f.Payments.UpdateStatus(context.Background(), paid.Payment.ID, domain.PaymentStatusCompleted))
	err := svc.DeleteBooking(context.Background(), paid.Booking.ID)
	assert.ErrorIs(t, err, service.ErrBookingHasCompletedPayment)
	assert.NotNil(t, f.Store.GetBooking(paid.Booking.ID))
}

func TestGetBooking_ValidatesID(t *testing.T) {
	f := NewFixture()

	_, err := newBookingService(f).GetBooking(context.Background(), "")

	assert.ErrorIs(t, err, service.ErrInvalidBookingID)
}
