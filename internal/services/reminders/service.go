package reminders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
	"boothbook/internal/ports"
)

type Service struct {
	repo   ports.ReminderRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.Reminders = (*Service)(nil)

func New(repo ports.ReminderRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger.Named("reminders"), now: time.Now}
}

// Create queues a PENDING reminder for the meeting. A reminder for an unknown
// meeting is reported as the meeting not being found.
func (s *Service) Create(ctx context.Context, meetingID string, in domain.ReminderInput) (*domain.Reminder, error) {
	if in.RemindAt.IsZero() {
		return nil, apperrors.Validation("reminder time is required")
	}
	r := &domain.Reminder{
		ID:        uuid.NewString(),
		MeetingID: meetingID,
		RemindAt:  in.RemindAt.UTC(),
		Message:   trimmed(in.Message),
		Status:    domain.ReminderPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateReminder(ctx, r); err != nil {
		if errors.Is(err, apperrors.ErrReferentialIntegrity) {
			return nil, apperrors.NotFound("meeting", meetingID)
		}
		s.logger.Error("Failed to create reminder", zap.String("meeting_id", meetingID), zap.Error(err))
		return nil, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, meetingID string) ([]domain.Reminder, error) {
	return s.repo.ListReminders(ctx, meetingID)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
