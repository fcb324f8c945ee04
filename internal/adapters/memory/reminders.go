package memory

import (
	"context"
	"time"

	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
)

func (s *Store) CreateReminder(ctx context.Context, r *domain.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[r.MeetingID]; !ok {
		return apperrors.MissingReference("meeting", r.MeetingID)
	}
	cp := *r
	s.reminders = append(s.reminders, &cp)
	return nil
}

func (s *Store) ListReminders(ctx context.Context, meetingID string) ([]domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.meetings[meetingID]; !ok {
		return nil, apperrors.NotFound("meeting", meetingID)
	}
	return s.remindersFor(meetingID), nil
}

// ClaimDue picks the pending reminder with the earliest remind time, then lowest id.
func (s *Store) ClaimDue(ctx context.Context, now time.Time) (domain.Reminder, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var next *domain.Reminder
	for _, r := range s.reminders {
		if r.Status != domain.ReminderPending || r.RemindAt.After(now) {
			continue
		}
		if next == nil || r.RemindAt.Before(next.RemindAt) || (r.RemindAt.Equal(next.RemindAt) && r.ID < next.ID) {
			next = r
		}
	}
	if next == nil {
		return domain.Reminder{}, false, nil
	}
	next.Status = domain.ReminderSending
	next.Attempts++
	return *next, true, nil
}

func (s *Store) MarkSent(ctx context.Context, id string, at time.Time) error {
	return s.updateReminder(id, func(r *domain.Reminder) {
		r.Status = domain.ReminderSent
		r.SentAt = &at
		r.LastError = nil
	})
}

func (s *Store) MarkFailed(ctx context.Context, id string, reason string) error {
	return s.updateReminder(id, func(r *domain.Reminder) {
		r.Status = domain.ReminderFailed
		r.LastError = &reason
	})
}

func (s *Store) updateReminder(id string, fn func(*domain.Reminder)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reminders {
		if r.ID == id {
			fn(r)
			return nil
		}
	}
	return apperrors.NotFound("reminder", id)
}
