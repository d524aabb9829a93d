package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travel/internal/redis"
)

// BookingConfirmation carries what the confirmation email needs.
type BookingConfirmation struct {
	BookingID    string
	UserEmail    string
	ListingTitle string
}

// JobHandle identifies an enqueued job.
type JobHandle struct {
	ID string
}

// NotificationDispatcher enqueues asynchronous notification jobs. Enqueue
// must return without waiting for delivery.
type NotificationDispatcher interface {
	Enqueue(ctx context.Context, msg BookingConfirmation) (JobHandle, error)
}

// ConfirmationJob is the queued representation of a booking confirmation.
type ConfirmationJob struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	UserEmail    string    `json:"user_email"`
	ListingTitle string    `json:"listing_title"`
	Attempts     int       `json:"attempts"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

// NotificationService dispatches confirmation emails through a job queue.
type NotificationService struct {
	queue  redis.Queue
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(queue redis.Queue, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		queue:  queue,
		logger: logger.Named("notification"),
	}
}

// Enqueue pushes a confirmation-email job onto the queue.
func (s *NotificationService) Enqueue(ctx context.Context, msg BookingConfirmation) (JobHandle, error) {
	job := ConfirmationJob{
		ID:           uuid.New().String(),
		BookingID:    msg.BookingID,
		UserEmail:    msg.UserEmail,
		ListingTitle: msg.ListingTitle,
		EnqueuedAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return JobHandle{}, fmt.Errorf("encode confirmation job: %w", err)
	}

	if err := s.queue.Push(ctx, payload); err != nil {
		return JobHandle{}, fmt.Errorf("enqueue confirmation job: %w", err)
	}

	s.logger.Info("confirmation email enqueued",
		zap.String("job_id", job.ID),
		zap.String("booking_id", job.BookingID))

	return JobHandle{ID: job.ID}, nil
}

// notifyConfirmation enqueues msg and turns a failure into a warning. The
// caller's operation has already committed, so it must not fail here.
func notifyConfirmation(ctx context.Context, dispatcher NotificationDispatcher, logger *zap.Logger, msg BookingConfirmation) []string {
	if dispatcher == nil {
		return nil
	}

	if _, err := dispatcher.Enqueue(ctx, msg); err != nil {
		logger.Warn("failed to enqueue confirmation email",
			zap.String("booking_id", msg.BookingID),
			zap.Error(err))
		return []string{"confirmation email could not be scheduled"}
	}
	return nil
}
