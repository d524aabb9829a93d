package service

import "errors"

var (
	// ErrInvalidListingID is returned when listing ID is empty.
	ErrInvalidListingID = errors.New("invalid listing id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidDates is returned when check-out is not after check-in.
	ErrInvalidDates = errors.New("check-out date must be after check-in date")

	// ErrInvalidTotalPrice is returned when the computed booking total is not positive.
	ErrInvalidTotalPrice = errors.New("total price must be greater than zero")

	// ErrInvalidPrice is returned when a listing price per night is not positive.
	ErrInvalidPrice = errors.New("price per night must be greater than zero")

	// ErrInvalidTitle is returned when a listing title is empty.
	ErrInvalidTitle = errors.New("invalid listing title")

	// ErrInvalidEmail is returned when a user email is malformed.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidName is returned when a user has no first name.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidCurrency is returned when a currency code is not a 3-letter code.
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrMissingTransactionID is returned when verifying a payment that was never initiated.
	ErrMissingTransactionID = errors.New("no transaction id found for this payment")

	// ErrPaymentFinalized is returned when acting on a completed or failed payment.
	ErrPaymentFinalized = errors.New("payment already finalized")

	// ErrPaymentInProgress is returned when another gateway call holds the payment.
	ErrPaymentInProgress = errors.New("payment operation already in progress")

	// ErrPendingPaymentExists is returned when a booking already has a pending payment.
	ErrPendingPaymentExists = errors.New("booking already has a pending payment")

	// ErrPaymentAlreadyInitiated is returned when editing a payment the gateway already knows.
	ErrPaymentAlreadyInitiated = errors.New("payment already initiated")

	// ErrPaymentCompleted is returned when deleting a completed payment.
	ErrPaymentCompleted = errors.New("completed payments cannot be deleted")

	// ErrBookingNotPending is returned when a booking is no longer pending.
	ErrBookingNotPending = errors.New("booking not pending")

	// ErrBookingAlreadyCancelled is returned when cancelling a cancelled booking.
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")

	// ErrBookingHasCompletedPayment is returned when deleting a paid booking.
	ErrBookingHasCompletedPayment = errors.New("booking has a completed payment")
)
