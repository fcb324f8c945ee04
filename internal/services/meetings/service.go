// Package meetings is the meeting scheduler. A meeting and its participant
// rows are always written together; a bad participant reference leaves no
// trace of the meeting.
package meetings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boothbook/internal/apperrors"
	"boothbook/internal/arrayfield"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
	"boothbook/internal/ports"
)

type Service struct {
	repo   ports.MeetingRepository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.Meetings = (*Service)(nil)

// New returns a scheduler whose date filters use calendar days in loc.
func New(repo ports.MeetingRepository, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc, logger: logger.Named("meetings"), now: time.Now}
}

// Schedule creates a SCHEDULED meeting with its participants.
func (s *Service) Schedule(ctx context.Context, in domain.ScheduleInput) (*domain.Meeting, error) {
	m := &domain.Meeting{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		MeetingType: in.MeetingType,
		Status:      domain.StatusScheduled,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Location:    in.Location,
		KeyTopics:   arrayfield.Normalize(in.KeyTopics),
		ActionItems: arrayfield.Normalize(in.ActionItems),
	}
	if err := validate(m); err != nil {
		return nil, err
	}
	contactIDs, err := participantIDs(in.ParticipantContactIDs)
	if err != nil {
		return nil, err
	}
	m.ID = uuid.NewString()
	m.CreatedAt = s.now().UTC()
	m.UpdatedAt = m.CreatedAt
	if err := s.repo.CreateMeeting(ctx, m, contactIDs); err != nil {
		s.logger.Error("Failed to schedule meeting",
			zap.String("title", m.Title),
			zap.Strings("participants", contactIDs),
			zap.Error(err))
		return nil, err
	}
	s.logger.Info("Meeting scheduled",
		zap.String("meeting_id", m.ID),
		zap.Time("start_time", m.StartTime),
		zap.Int("participants", len(contactIDs)))
	return s.repo.GetMeeting(ctx, m.ID)
}

// Update replaces every mutable field and the participant set. Any status may
// follow any other.
func (s *Service) Update(ctx context.Context, id string, in domain.MeetingUpdate) (*domain.Meeting, error) {
	m := &domain.Meeting{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		MeetingType: in.MeetingType,
		Status:      in.Status,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Location:    in.Location,
		KeyTopics:   arrayfield.Normalize(in.KeyTopics),
		ActionItems: arrayfield.Normalize(in.ActionItems),
		UpdatedAt:   s.now().UTC(),
	}
	if !m.Status.Valid() {
		return nil, apperrors.Validation("unknown meeting status %q", m.Status)
	}
	if err := validate(m); err != nil {
		return nil, err
	}
	contactIDs, err := participantIDs(in.ParticipantContactIDs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMeeting(ctx, m, contactIDs); err != nil {
		s.logger.Error("Failed to update meeting", zap.String("meeting_id", id), zap.Error(err))
		return nil, err
	}
	return s.repo.GetMeeting(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteMeeting(ctx, id); err != nil {
		s.logger.Error("Failed to delete meeting", zap.String("meeting_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	return s.repo.GetMeeting(ctx, id)
}

// List returns meetings matching every supplied dimension, by start time.
func (s *Service) List(ctx context.Context, f filter.MeetingFilter) ([]domain.Meeting, error) {
	p, err := filter.BuildMeetingFilter(f, s.loc)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.ListMeetings(ctx, p)
	if err != nil {
		s.logger.Error("Failed to list meetings", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func validate(m *domain.Meeting) error {
	switch {
	case m.Title == "":
		return apperrors.Validation("meeting title is required")
	case !m.MeetingType.Valid():
		return apperrors.Validation("unknown meeting type %q", m.MeetingType)
	case m.StartTime.IsZero() || m.EndTime.IsZero():
		return apperrors.Validation("meeting start and end times are required")
	case !m.EndTime.After(m.StartTime):
		return apperrors.Validation("meeting must end after it starts")
	}
	return nil
}

// participantIDs trims ids, rejects blanks and drops repeats keeping the first.
func participantIDs(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, apperrors.Validation("participant %d has no contact id", i)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
