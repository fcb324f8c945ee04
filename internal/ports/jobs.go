package ports

import (
	"context"
	"time"

	"boothbook/internal/domain"
)

// ReminderQueue supports claiming due reminders and recording delivery.
type ReminderQueue interface {
	// ClaimDue moves the oldest pending reminder due at or before now to SENDING.
	ClaimDue(ctx context.Context, now time.Time) (r domain.Reminder, found bool, err error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
