package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"travel/internal/mail"
	"travel/internal/redis"
	"travel/internal/service"
)

const (
	outcomeSent    = "sent"
	outcomeRetried = "retried"
	outcomeDropped = "dropped"
)

var emailJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "travel_email_jobs_total",
		Help: "Confirmation email jobs processed, by outcome.",
	},
	[]string{"outcome"},
)

// popErrorBackoff is how long the worker waits after a failed queue read.
const popErrorBackoff = time.Second

// EmailWorker consumes confirmation-email jobs and delivers them. A failed
// delivery is re-queued until MaxAttempts is reached.
type EmailWorker struct {
	queue       redis.Queue
	sender      mail.Sender
	maxAttempts int
	pollTimeout time.Duration
	logger      *zap.Logger
}

// NewEmailWorker creates a new EmailWorker.
func NewEmailWorker(queue redis.Queue, sender mail.Sender, maxAttempts int, pollTimeout time.Duration, logger *zap.Logger) *EmailWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &EmailWorker{
		queue:       queue,
		sender:      sender,
		maxAttempts: maxAttempts,
		pollTimeout: pollTimeout,
		logger:      logger.Named("email_worker"),
	}
}

// Run processes jobs until ctx is cancelled.
func (w *EmailWorker) Run(ctx context.Context) error {
	w.logger.Info("email worker started", zap.Int("max_attempts", w.maxAttempts))

	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("email worker stopped")
			return nil
		}

		if _, err := w.ProcessNext(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("failed to read job queue", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(popErrorBackoff):
			}
		}
	}
}

// ProcessNext waits for one job and handles it. It reports whether a job
// was taken off the queue.
func (w *EmailWorker) ProcessNext(ctx context.Context) (bool, error) {
	payload, err := w.queue.Pop(ctx, w.pollTimeout)
	if err != nil {
		return false, err
	}
	if payload == nil {
		return false, nil
	}

	w.handle(ctx, payload)
	return true, nil
}

func (w *EmailWorker) handle(ctx context.Context, payload []byte) {
	var job service.ConfirmationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		emailJobsTotal.WithLabelValues(outcomeDropped).Inc()
		w.logger.Error("dropping malformed job", zap.ByteString("payload", payload), zap.Error(err))
		return
	}

	job.Attempts++
	msg := mail.NewConfirmationMessage(mail.BookingConfirmation{
		BookingID:    job.BookingID,
		UserEmail:    job.UserEmail,
		ListingTitle: job.ListingTitle,
	})

	err := w.sender.Send(msg)
	if err == nil {
		emailJobsTotal.WithLabelValues(outcomeSent).Inc()
		w.logger.Info("confirmation email sent",
			zap.String("job_id", job.ID),
			zap.String("booking_id", job.BookingID),
			zap.Int("attempts", job.Attempts))
		return
	}

	if job.Attempts >= w.maxAttempts {
		emailJobsTotal.WithLabelValues(outcomeDropped).Inc()
		w.logger.Error("confirmation email dropped",
			zap.String("job_id", job.ID),
			zap.String("booking_id", job.BookingID),
			zap.Int("attempts", job.Attempts),
			zap.Error(err))
		return
	}

	retry, encodeErr := json.Marshal(job)
	if encodeErr != nil {
		emailJobsTotal.WithLabelValues(outcomeDropped).Inc()
		w.logger.Error("failed to encode job for retry", zap.String("job_id", job.ID), zap.Error(encodeErr))
		return
	}

	if pushErr := w.queue.Push(context.WithoutCancel(ctx), retry); pushErr != nil {
		emailJobsTotal.WithLabelValues(outcomeDropped).Inc()
		w.logger.Error("failed to re-queue job", zap.String("job_id", job.ID), zap.Error(pushErr))
		return
	}

	emailJobsTotal.WithLabelValues(outcomeRetried).Inc()
	w.logger.Warn("confirmation email failed, re-queued",
		zap.String("job_id", job.ID),
		zap.Int("attempts", job.Attempts),
		zap.Error(err))
}
