// Package reminderrunner delivers due meeting reminders in the background.
package reminderrunner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"boothbook/internal/domain"
	"boothbook/internal/ports"
)

// Notifier delivers one reminder.
type Notifier interface {
	Notify(ctx context.Context, r domain.Reminder) error
}

// LogNotifier "delivers" reminders by logging them.
type LogNotifier struct{ Logger *zap.Logger }

func (n LogNotifier) Notify(ctx context.Context, r domain.Reminder) error {
	fields := []zap.Field{
		zap.String("reminder_id", r.ID),
		zap.String("meeting_id", r.MeetingID),
		zap.Time("remind_at", r.RemindAt),
		zap.Int("attempt", r.Attempts),
	}
	if r.Message != nil {
		fields = append(fields, zap.String("message", *r.Message))
	}
	n.Logger.Info("Meeting reminder", fields...)
	return nil
}

type Options struct {
	Concurrency  int
	PollInterval time.Duration
	Now          func() time.Time
}

// Run starts a dispatcher that claims due reminders every poll interval and
// a pool of workers that deliver them. It returns immediately; the returned
// WaitGroup is done once ctx is cancelled and every worker has drained.
func Run(ctx context.Context, queue ports.ReminderQueue, notifier Notifier, logger *zap.Logger, opts Options) *sync.WaitGroup {
	var wg sync.WaitGroup
	if opts.Concurrency < 1 {
		return &wg
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger = logger.Named("reminders")
	due := make(chan domain.Reminder, opts.Concurrency)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(due)
		ticker := time.NewTicker(opts.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !claimAll(ctx, queue, due, logger, opts.Now) {
					return
				}
			}
		}
	}()

	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			// Reminders already claimed are finished even during shutdown.
			dctx := context.WithoutCancel(ctx)
			for r := range due {
				Deliver(dctx, queue, notifier, logger.With(zap.Int("worker", idx)), r, opts.Now)
			}
		}(i)
	}
	return &wg
}

// claimAll hands every currently due reminder to the workers. It reports
// false when ctx was cancelled while waiting for a free worker.
func claimAll(ctx context.Context, queue ports.ReminderQueue, due chan<- domain.Reminder, logger *zap.Logger, now func() time.Time) bool {
	for {
		r, found, err := queue.ClaimDue(ctx, now())
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("Failed to claim reminder", zap.Error(err))
			}
			return ctx.Err() == nil
		}
		if !found {
			return true
		}
		select {
		case due <- r:
		case <-ctx.Done():
			// Claimed but never handed out; record it so it does not sit in SENDING.
			markFailed(context.WithoutCancel(ctx), queue, logger, r, ctx.Err())
			return false
		}
	}
}

// Deliver notifies one claimed reminder and records the outcome.
func Deliver(ctx context.Context, queue ports.ReminderQueue, notifier Notifier, logger *zap.Logger, r domain.Reminder, now func() time.Time) {
	if err := notifier.Notify(ctx, r); err != nil {
		markFailed(ctx, queue, logger, r, err)
		return
	}
	if err := queue.MarkSent(ctx, r.ID, now().UTC()); err != nil {
		logger.Error("Failed to mark reminder sent", zap.String("reminder_id", r.ID), zap.Error(err))
	}
}

func markFailed(ctx context.Context, queue ports.ReminderQueue, logger *zap.Logger, r domain.Reminder, cause error) {
	logger.Warn("Reminder delivery failed", zap.String("reminder_id", r.ID), zap.Error(cause))
	if err := queue.MarkFailed(ctx, r.ID, cause.Error()); err != nil {
		logger.Error("Failed to mark reminder failed", zap.String("reminder_id", r.ID), zap.Error(err))
	}
}
