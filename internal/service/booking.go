package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travel/internal/domain"
	"travel/internal/repository"
)

// BookingService handles booking operations.
type BookingService struct {
	tx          repository.Transactor
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	dispatcher  NotificationDispatcher
	currency    string
	logger      *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	tx repository.Transactor,
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	dispatcher NotificationDispatcher,
	currency string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:          tx,
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
		currency:    currency,
		logger:      logger.Named("booking"),
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
type CreateBookingRequest struct {
	ListingID string
	UserID    string
	CheckIn   time.Time
	CheckOut  time.Time
}

// CreateBookingResult is the outcome of a booking creation. Warnings lists
// non-fatal problems that happened after the booking was committed.
type CreateBookingResult struct {
	Booking  *domain.Booking
	Payment  *domain.Payment
	Warnings []string
}

// CreateBooking persists a pending booking and its initial pending payment
// in one transaction, then schedules the confirmation email.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	if req.ListingID == "" {
		return nil, ErrInvalidListingID
	}

	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}

	nights := domain.Nights(req.CheckIn, req.CheckOut)
	if nights <= 0 {
		return nil, ErrInvalidDates
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	total := domain.TotalFor(listing.PricePerNight, nights)
	if !total.IsPositive() {
		return nil, ErrInvalidTotalPrice
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ID:           uuid.New().String(),
		ListingID:    listing.ID,
		UserID:       user.ID,
		CheckInDate:  req.CheckIn,
		CheckOutDate: req.CheckOut,
		TotalPrice:   total,
		Status:       domain.BookingStatusPending,
		CreatedAt:    now,
	}
	payment := newPendingPayment(booking, s.currency, now)

	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Bookings.Create(ctx, booking); err != nil {
			return err
		}
		return repos.Payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("payment_id", payment.ID),
		zap.String("total", total.StringFixed(2)))

	warnings := notifyConfirmation(ctx, s.dispatcher, s.logger, BookingConfirmation{
		BookingID:    booking.ID,
		UserEmail:    user.Email,
		ListingTitle: listing.Title,
	})

	return &CreateBookingResult{Booking: booking, Payment: payment, Warnings: warnings}, nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	return s.bookingRepo.GetByID(ctx, bookingID)
}

// ListBookings retrieves all bookings.
func (s *BookingService) ListBookings(ctx context.Context) ([]*domain.Booking, error) {
	return s.bookingRepo.GetAll(ctx)
}

// UpdateBookingRequest contains the parameters for changing booking dates.
type UpdateBookingRequest struct {
	BookingID string
	CheckIn   time.Time
	CheckOut  time.Time
}

// UpdateBooking changes the dates of a pending booking. The total is
// recomputed and a pending payment not yet sent to the gateway follows it.
func (s *BookingService) UpdateBooking(ctx context.Context, req UpdateBookingRequest) (*domain.Booking, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}

	nights := domain.Nights(req.CheckIn, req.CheckOut)
	if nights <= 0 {
		return nil, ErrInvalidDates
	}

	var updated *domain.Booking
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		booking, err := repos.Bookings.GetByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			return err
		}

		if booking.Status != domain.BookingStatusPending {
			return ErrBookingNotPending
		}

		listing, err := repos.Listings.GetByID(ctx, booking.ListingID)
		if err != nil {
			return err
		}

		total := domain.TotalFor(listing.PricePerNight, nights)
		if !total.IsPositive() {
			return ErrInvalidTotalPrice
		}

		booking.CheckInDate = req.CheckIn
		booking.CheckOutDate = req.CheckOut
		booking.TotalPrice = total
		if err := repos.Bookings.Update(ctx, booking); err != nil {
			return err
		}

		payment, err := repos.Payments.GetPendingByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if payment != nil && !payment.Initiated() && !payment.Amount.Equal(total) {
			payment.Amount = total
			payment.UpdatedAt = time.Now().UTC()
			if err := repos.Payments.Update(ctx, payment); err != nil {
				return err
			}
		}

		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// CancelBooking cancels a booking. Any pending payment is marked failed so
// it can no longer be initiated or verified.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	var cancelled *domain.Booking
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		booking, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status == domain.BookingStatusCancelled {
			return ErrBookingAlreadyCancelled
		}

		if err := repos.Bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCancelled); err != nil {
			return err
		}
		booking.Status = domain.BookingStatusCancelled

		payment, err := repos.Payments.GetPendingByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if payment != nil {
			if err := repos.Payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusFailed); err != nil {
				return err
			}
		}

		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled", zap.String("booking_id", bookingID))
	return cancelled, nil
}

// DeleteBooking removes a booking and its payment attempts. Bookings with a
// completed payment are kept.
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}

	return s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Bookings.GetByIDForUpdate(ctx, bookingID); err != nil {
			return err
		}

		payments, err := repos.Payments.GetByBookingID(ctx, bookingID)
		if err != nil {
			return err
		}
		for _, p := range payments {
			if p.Status == domain.PaymentStatusCompleted {
				return ErrBookingHasCompletedPayment
			}
		}

		return repos.Bookings.Delete(ctx, bookingID)
	})
}

func newPendingPayment(booking *domain.Booking, currency string, now time.Time) *domain.Payment {
	return &domain.Payment{
		ID:        uuid.New().String(),
		BookingID: booking.ID,
		Amount:    booking.TotalPrice,
		Currency:  currency,
		Reference: uuid.New().String(),
		Status:    domain.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
