package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"travel/internal/domain"
	"travel/internal/gateway"
	"travel/internal/redis"
	"travel/internal/repository"
)

// GatewayClient is the payment gateway as seen by the payment workflow.
type GatewayClient interface {
	Initialize(ctx context.Context, in gateway.InitiateInput, baseURL string) (*gateway.InitializeResult, error)
	Verify(ctx context.Context, payment *domain.Payment) (*gateway.VerifyResult, error)
}

// PaymentOptions configures the payment workflow.
type PaymentOptions struct {
	// Currency is assigned to every payment created by the service.
	Currency string
	// LockTTL bounds how long one gateway exchange may hold a payment.
	LockTTL time.Duration
	// PublicBaseURL prefixes the callback and return URLs sent to the gateway.
	PublicBaseURL string
}

// PaymentService drives payments through pending -> completed | failed.
type PaymentService struct {
	tx          repository.Transactor
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	gateway     GatewayClient
	locks       redis.LockStoreInterface
	dispatcher  NotificationDispatcher
	opts        PaymentOptions
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	tx repository.Transactor,
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	gw GatewayClient,
	locks redis.LockStoreInterface,
	dispatcher NotificationDispatcher,
	opts PaymentOptions,
	logger *zap.Logger,
) *PaymentService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = time.Minute
	}
	return &PaymentService{
		tx:          tx,
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		gateway:     gw,
		locks:       locks,
		dispatcher:  dispatcher,
		opts:        opts,
		logger:      logger.Named("payment"),
	}
}

// InitiateResult is the outcome of a successful initiation.
type InitiateResult struct {
	Payment     *domain.Payment
	CheckoutURL string
	// Reused is set when the payment had already been registered with the
	// gateway and no new call was made.
	Reused bool
}

// VerifyResult is the outcome of a successful verification.
type VerifyResult struct {
	Payment  *domain.Payment
	Booking  *domain.Booking
	Warnings []string
}

// InitiatePayment registers a pending payment with the gateway and returns
// the checkout URL the payer must visit.
func (s *PaymentService) InitiatePayment(ctx context.Context, paymentID string) (*InitiateResult, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return s.initiate(ctx, payment)
}

// InitiateBookingPayment initiates the pending payment of a booking,
// creating one when the booking has none.
func (s *PaymentService) InitiateBookingPayment(ctx context.Context, bookingID string) (*InitiateResult, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	payment, err := s.resolvePending(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	return s.initiate(ctx, payment)
}

// resolvePending returns the booking's pending payment or creates it. The
// booking row lock serialises concurrent callers so at most one is created.
func (s *PaymentService) resolvePending(ctx context.Context, bookingID string) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		booking, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status != domain.BookingStatusPending {
			return ErrBookingNotPending
		}

		existing, err := repos.Payments.GetPendingByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			payment = existing
			return nil
		}

		payment = newPendingPayment(booking, s.opts.Currency, time.Now().UTC())
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		s.logger.Info("payment attempt created",
			zap.String("booking_id", booking.ID),
			zap.String("payment_id", payment.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (s *PaymentService) initiate(ctx context.Context, payment *domain.Payment) (*InitiateResult, error) {
	if payment.Status.IsTerminal() {
		return nil, ErrPaymentFinalized
	}

	release, err := s.lock(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Another caller may have finished while we waited for the lock.
	payment, err = s.paymentRepo.GetByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	if payment.Status.IsTerminal() {
		return nil, ErrPaymentFinalized
	}

	if payment.CheckoutURL != "" {
		return &InitiateResult{Payment: payment, CheckoutURL: payment.CheckoutURL, Reused: true}, nil
	}

	booking, err := s.bookingRepo.GetByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusPending {
		return nil, ErrBookingNotPending
	}

	listing, err := s.listingRepo.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}

	payer, err := s.userRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Initialize(ctx, gateway.InitiateInput{
		Payment:      payment,
		Booking:      booking,
		Payer:        payer,
		ListingTitle: listing.Title,
	}, s.opts.PublicBaseURL)
	if err != nil {
		return nil, err
	}

	payment.TransactionID = result.TransactionID
	payment.CheckoutURL = result.CheckoutURL
	payment.UpdatedAt = time.Now().UTC()
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment initiated",
		zap.String("payment_id", payment.ID),
		zap.String("transaction_id", payment.TransactionID))

	return &InitiateResult{Payment: payment, CheckoutURL: payment.CheckoutURL}, nil
}

// VerifyPayment asks the gateway for the outcome of an initiated payment.
// On success the payment is completed and its booking confirmed together.
// On a gateway rejection the payment is marked failed. When the gateway is
// unreachable nothing changes.
func (s *PaymentService) VerifyPayment(ctx context.Context, paymentID string) (*VerifyResult, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.TransactionID == "" {
		return nil, ErrMissingTransactionID
	}

	if payment.Status.IsTerminal() {
		return nil, ErrPaymentFinalized
	}

	release, err := s.lock(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	payment, err = s.paymentRepo.GetByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	if payment.Status.IsTerminal() {
		return nil, ErrPaymentFinalized
	}

	if _, err := s.gateway.Verify(ctx, payment); err != nil {
		if gateway.IsBusinessError(err) {
			if markErr := s.markFailed(ctx, payment); markErr != nil {
				return nil, markErr
			}
		}
		return nil, err
	}

	var booking *domain.Booking
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		b, err := repos.Bookings.GetByIDForUpdate(ctx, payment.BookingID)
		if err != nil {
			return err
		}

		p, err := repos.Payments.GetByIDForUpdate(ctx, payment.ID)
		if err != nil {
			return err
		}

		if p.Status != domain.PaymentStatusPending {
			return ErrPaymentFinalized
		}

		if err := repos.Payments.UpdateStatus(ctx, p.ID, domain.PaymentStatusCompleted); err != nil {
			return err
		}

		if err := repos.Bookings.UpdateStatus(ctx, b.ID, domain.BookingStatusConfirmed); err != nil {
			return err
		}

		p.Status = domain.PaymentStatusCompleted
		b.Status = domain.BookingStatusConfirmed
		payment, booking = p, b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment completed",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", booking.ID))

	return &VerifyResult{
		Payment:  payment,
		Booking:  booking,
		Warnings: s.notifyConfirmed(ctx, booking),
	}, nil
}

func (s *PaymentService) markFailed(ctx context.Context, payment *domain.Payment) error {
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		p, err := repos.Payments.GetByIDForUpdate(ctx, payment.ID)
		if err != nil {
			return err
		}
		if p.Status != domain.PaymentStatusPending {
			return nil
		}
		return repos.Payments.UpdateStatus(ctx, p.ID, domain.PaymentStatusFailed)
	})
	if err != nil {
		return err
	}

	s.logger.Info("payment failed", zap.String("payment_id", payment.ID))
	return nil
}

// notifyConfirmed schedules the confirmation email of a confirmed booking.
func (s *PaymentService) notifyConfirmed(ctx context.Context, booking *domain.Booking) []string {
	user, err := s.userRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		s.logger.Warn("confirmation email skipped", zap.String("booking_id", booking.ID), zap.Error(err))
		return []string{"confirmation email could not be scheduled"}
	}

	listing, err := s.listingRepo.GetByID(ctx, booking.ListingID)
	if err != nil {
		s.logger.Warn("confirmation email skipped", zap.String("booking_id", booking.ID), zap.Error(err))
		return []string{"confirmation email could not be scheduled"}
	}

	return notifyConfirmation(ctx, s.dispatcher, s.logger, BookingConfirmation{
		BookingID:    booking.ID,
		UserEmail:    user.Email,
		ListingTitle: listing.Title,
	})
}

// lock takes the per-payment gateway lock and returns its release func.
func (s *PaymentService) lock(ctx context.Context, paymentID string) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}

	ok, err := s.locks.AcquirePaymentLock(ctx, paymentID, s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPaymentInProgress
	}

	return func() {
		if err := s.locks.ReleasePaymentLock(context.WithoutCancel(ctx), paymentID); err != nil {
			s.logger.Warn("failed to release payment lock", zap.String("payment_id", paymentID), zap.Error(err))
		}
	}, nil
}

// CreatePayment opens a new pending payment for a pending booking.
func (s *PaymentService) CreatePayment(ctx context.Context, bookingID string) (*domain.Payment, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	var payment *domain.Payment
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		booking, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status != domain.BookingStatusPending {
			return ErrBookingNotPending
		}

		existing, err := repos.Payments.GetPendingByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrPendingPaymentExists
		}

		payment = newPendingPayment(booking, s.opts.Currency, time.Now().UTC())
		return repos.Payments.Create(ctx, payment)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPendingPaymentExists
		}
		return nil, err
	}

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

// ListPayments retrieves all payments, or those of one booking when
// bookingID is set.
func (s *PaymentService) ListPayments(ctx context.Context, bookingID string) ([]*domain.Payment, error) {
	if bookingID != "" {
		return s.paymentRepo.GetByBookingID(ctx, bookingID)
	}
	return s.paymentRepo.GetAll(ctx)
}

// UpdatePaymentCurrency changes the currency of a pending payment that has
// not been sent to the gateway yet.
func (s *PaymentService) UpdatePaymentCurrency(ctx context.Context, paymentID, currency string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !validCurrency(currency) {
		return nil, ErrInvalidCurrency
	}

	var updated *domain.Payment
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		payment, err := repos.Payments.GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}

		if payment.Status.IsTerminal() {
			return ErrPaymentFinalized
		}

		if payment.CheckoutURL != "" || payment.TransactionID != "" {
			return ErrPaymentAlreadyInitiated
		}

		payment.Currency = currency
		payment.UpdatedAt = time.Now().UTC()
		if err := repos.Payments.Update(ctx, payment); err != nil {
			return err
		}

		updated = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeletePayment removes a payment that was never completed.
func (s *PaymentService) DeletePayment(ctx context.Context, paymentID string) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}

	return s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		payment, err := repos.Payments.GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}

		if payment.Status == domain.PaymentStatusCompleted {
			return ErrPaymentCompleted
		}

		return repos.Payments.Delete(ctx, paymentID)
	})
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
