package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel/internal/domain"
	"travel/internal/gateway"
	"travel/internal/service"
)

func TestInitiatePayment_StoresGatewayTransaction(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)

	result, err := newPaymentService(f).InitiatePayment(context.Background(), created.Payment.ID)

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/tx_123", result.CheckoutURL)
	assert.False(t, result.Reused)

	payment := f.Store.GetPayment(created.Payment.ID)
	assert.Equal(t, "tx_123", payment.TransactionID)
	assert.Equal(t, "https://checkout.example/tx_123", payment.CheckoutURL)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)

	assert.Equal(t, testBaseURL, f.Gateway.LastBaseURL)
	assert.Equal(t, "guest@example.com", f.Gateway.LastInput.Payer.Email)
	assert.Equal(t, "Lakeside cabin", f.Gateway.LastInput.ListingTitle)
	assert.Equal(t, created.Payment.Reference, f.Gateway.LastInput.Payment.Reference)
	assert.False(t, f.Locks.Held(created.Payment.ID))
}

func TestInitiatePayment_AlreadyInitiatedReturnsExistingURL(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)

	_, err := svc.InitiatePayment(context.Background(), created.Payment.ID)
	require.NoError(t, err)

	result, err := svc.InitiatePayment(context.Background(), created.Payment.ID)

	require.NoError(t, err)
	assert.True(t, result.Reused)
	assert.Equal(t, "https://checkout.example/tx_123", result.CheckoutURL)
	assert.Equal(t, int32(1), f.Gateway.InitializeCallCount)
}

func TestInitiatePayment_BusinessFailureLeavesPaymentUnchanged(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	f.Gateway.InitializeErr = NewBusinessError(`{"status":"failed","message":"Invalid currency"}`)

	_, err := newPaymentService(f).InitiatePayment(context.Background(), created.Payment.ID)

	var be *gateway.BusinessError
	require.ErrorAs(t, err, &be)
	assert.JSONEq(t, `{"status":"failed","message":"Invalid currency"}`, string(be.Details))

	payment := f.Store.GetPayment(created.Payment.ID)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Empty(t, payment.TransactionID)
	assert.Empty(t, payment.CheckoutURL)
	assert.False(t, f.Locks.Held(created.Payment.ID))
}

func TestInitiatePayment_GatewayUnavailableLeavesPaymentUnchanged(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	f.Gateway.InitializeErr = fmt.Errorf("%w: connection refused", gateway.ErrUnavailable)

	_, err := newPaymentService(f).InitiatePayment(context.Background(), created.Payment.ID)

	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	payment := f.Store.GetPayment(created.Payment.ID)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Empty(t, payment.TransactionID)
	assert.Equal(t, int32(0), f.Payments.UpdateCallCount)
}

func TestInitiatePayment_TerminalPaymentIsFinal(t *testing.T) {
	for _, status := range []domain.PaymentStatus{domain.PaymentStatusCompleted, domain.PaymentStatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			f := NewFixture()
			seed(f)
			created := createBooking(t, f)
			require.NoError(t, f.Payments.UpdateStatus(context.Background(), created.Payment.ID, status))

			_, err := newPaymentService(f).InitiatePayment(context.Background(), created.Payment.ID)

			assert.ErrorIs(t, err, service.ErrPaymentFinalized)
			assert.Equal(t, int32(0), f.Gateway.InitializeCallCount)
		})
	}
}

func TestInitiatePayment_LockHeldConflicts(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	_, err := f.Locks.AcquirePaymentLock(context.Background(), created.Payment.ID, 0)
	require.NoError(t, err)

	_, err = newPaymentService(f).InitiatePayment(context.Background(), created.Payment.ID)

	assert.ErrorIs(t, err, service.ErrPaymentInProgress)
	assert.Equal(t, int32(0), f.Gateway.InitializeCallCount)
}

func TestInitiatePayment_UnknownPayment(t *testing.T) {
	f := NewFixture()

	_, err := newPaymentService(f).InitiatePayment(context.Background(), "missing")

	assert.Error(t, err)
	_, err = newPaymentService(f).InitiatePayment(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrInvalidPaymentID)
}

func TestInitiateBookingPayment_ReusesPendingPayment(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)

	first, err := svc.InitiateBookingPayment(context.Background(), created.Booking.ID)
	require.NoError(t, err)
	second, err := svc.InitiateBookingPayment(context.Background(), created.Booking.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Payment.ID, first.Payment.ID)
	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	assert.Len(t, f.Store.PaymentsForBooking(created.Booking.ID), 1)
	assert.Equal(t, int32(1), f.Gateway.InitializeCallCount)
}

func TestInitiateBookingPayment_CreatesFreshPaymentAfterFailure(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	require.NoError(t, f.Payments.UpdateStatus(context.Background(), created.Payment.ID, domain.PaymentStatusFailed))

	result, err := newPaymentService(f).InitiateBookingPayment(context.Background(), created.Booking.ID)

	require.NoError(t, err)
	assert.NotEqual(t, created.Payment.ID, result.Payment.ID)
	assert.True(t, result.Payment.Amount.Equal(created.Booking.TotalPrice))
	assert.NotEqual(t, created.Payment.Reference, result.Payment.Reference)
	assert.Len(t, f.Store.PaymentsForBooking(created.Booking.ID), 2)
	assert.Equal(t, domain.PaymentStatusFailed, f.Store.GetPayment(created.Payment.ID).Status)
}

func TestInitiateBookingPayment_RejectsNonPendingBooking(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	require.NoError(t, f.Bookings.UpdateStatus(context.Background(), created.Booking.ID, domain.BookingStatusConfirmed))

	_, err := newPaymentService(f).InitiateBookingPayment(context.Background(), created.Booking.ID)

	assert.ErrorIs(t, err, service.ErrBookingNotPending)
	assert.Equal(t, int32(0), f.Gateway.InitializeCallCount)
}

func TestInitiateBookingPayment_ConcurrentCallersShareOnePayment(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	require.NoError(t, f.Payments.Delete(context.Background(), created.Payment.ID))
	svc := newPaymentService(f)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.InitiateBookingPayment(context.Background(), created.Booking.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, service.ErrPaymentInProgress)
		}
	}
	assert.Len(t, f.Store.PaymentsForBooking(created.Booking.ID), 1)
}

func TestVerifyPayment_RequiresTransactionID(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)

	_, err := newPaymentService(f).VerifyPayment(context.Background(), created.Payment.ID)

	assert.ErrorIs(t, err, service.ErrMissingTransactionID)
	assert.Equal(t, int32(0), f.Gateway.VerifyCallCount)
	assert.Equal(t, domain.PaymentStatusPending, f.Store.GetPayment(created.Payment.ID).Status)
}

func TestVerifyPayment_SuccessCompletesPaymentAndConfirmsBooking(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)
	_, err := svc.InitiatePayment(context.Background(), created.Payment.ID)
	require.NoError(t, err)

	result, err := svc.VerifyPayment(context.Background(), created.Payment.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, result.Payment.Status)
	assert.Equal(t, domain.BookingStatusConfirmed, result.Booking.Status)
	assert.Equal(t, domain.PaymentStatusCompleted, f.Store.GetPayment(created.Payment.ID).Status)
	assert.Equal(t, domain.BookingStatusConfirmed, f.Store.GetBooking(created.Booking.ID).Status)
	assert.Empty(t, result.Warnings)

	// One message at booking creation, one at confirmation.
	assert.Len(t, f.Dispatcher.Messages(), 2)
	assert.False(t, f.Locks.Held(created.Payment.ID))
}

func TestVerifyPayment_BusinessFailureMarksPaymentFailed(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)
	_, err := svc.InitiatePayment(context.Background(), created.Payment.ID)
	require.NoError(t, err)
	f.Gateway.VerifyErr = NewBusinessError(`{"status":"failed"}`)

	_, err = svc.VerifyPayment(context.Background(), created.Payment.ID)

	assert.True(t, gateway.IsBusinessError(err))
	assert.Equal(t, domain.PaymentStatusFailed, f.Store.GetPayment(created.Payment.ID).Status)
	assert.Equal(t, domain.BookingStatusPending, f.Store.GetBooking(created.Booking.ID).Status)

	_, err = svc.VerifyPayment(context.Background(), created.Payment.ID)
	assert.ErrorIs(t, err, service.ErrPaymentFinalized)
}

func TestVerifyPayment_GatewayUnavailableChangesNothing(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)
	_, err := svc.InitiatePayment(context.Background(), created.Payment.ID)
	require.NoError(t, err)
	f.Gateway.VerifyErr = fmt.Errorf("%w: timeout", gateway.ErrUnavailable)
	before := f.Store.GetPayment(created.Payment.ID)

	_, err = svc.VerifyPayment(context.Background(), created.Payment.ID)

	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	assert.Equal(t, before, f.Store.GetPayment(created.Payment.ID))
	assert.Equal(t, domain.BookingStatusPending, f.Store.GetBooking(created.Booking.ID).Status)
}

func TestVerifyPayment_ConfirmationIsAtomic(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)
	_, err := svc.InitiatePayment(context.Background(), created.Payment.ID)
	require.NoError(t, err)
	f.Bookings.UpdateStatusError = errors.New("db down")

	_, err = svc.VerifyPayment(context.Background(), created.Payment.ID)

	require.Error(t, err)
	assert.Equal(t, domain.PaymentStatusPending, f.Store.GetPayment(created.Payment.ID).Status)
	assert.Equal(t, domain.BookingStatusPending, f.Store.GetBooking(created.Booking.ID).Status)
}

func TestVerifyPayment_EnqueueFailureIsOnlyAWarning(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)
	_, err := svc.InitiatePayment(context.Background(), created.Payment.ID)
	require.NoError(t, err)
	f.Dispatcher.EnqueueError = errors.New("redis down")

	result, err := svc.VerifyPayment(context.Background(), created.Payment.ID)

	require.NoError(t, err)
	assert.Len(t, result.Warnings, 1)
	assert.Equal(t, domain.BookingStatusConfirmed, f.Store.GetBooking(created.Booking.ID).Status)
}

func TestCreatePayment_RespectsSinglePendingPayment(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)

	_, err := svc.CreatePayment(context.Background(), created.Booking.ID)
	assert.ErrorIs(t, err, service.ErrPendingPaymentExists)

	require.NoError(t, f.Payments.UpdateStatus(context.Background(), created.Payment.ID, domain.PaymentStatusFailed))
	payment, err := svc.CreatePayment(context.Background(), created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.True(t, payment.Amount.Equal(created.Booking.TotalPrice))
}

func TestUpdatePaymentCurrency(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)

	_, err := svc.UpdatePaymentCurrency(context.Background(), created.Payment.ID, "dollars")
	assert.ErrorIs(t, err, service.ErrInvalidCurrency)

	payment, err := svc.UpdatePaymentCurrency(context.Background(), created.Payment.ID, "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", payment.Currency)

	_, err = svc.InitiatePayment(context.Background(), created.Payment.ID)
	require.NoError(t, err)
	_, err = svc.UpdatePaymentCurrency(context.Background(), created.Payment.ID, "ETB")
	assert.ErrorIs(t, err, service.ErrPaymentAlreadyInitiated)
}

func TestDeletePayment_KeepsCompletedPayments(t *testing.T) {
	f := NewFixture()
	seed(f)
	created := createBooking(t, f)
	svc := newPaymentService(f)
	require.NoError(t, f.Payments.UpdateStatus(context.Background(), created.Payment.ID, domain.PaymentStatusCompleted))

	err := svc.DeletePayment(context.Background(), created.Payment.ID)

	assert.ErrorIs(t, err, service.ErrPaymentCompleted)
	assert.NotNil(t, f.Store.GetPayment(created.Payment.ID))
}

func TestListPayments_FiltersByBooking(t *testing.T) {
	f := NewFixture()
	seed(f)
	first := createBooking(t, f)
	createBooking(t, f)
	svc := newPaymentService(f)

	all, err := svc.ListPayments(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListPayments(context.Background(), first.Booking.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.Payment.ID, filtered[0].ID)
}
