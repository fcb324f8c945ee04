package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"boothbook/internal/apperrors"
	"boothbook/internal/arrayfield"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

// CreateMeeting validates every participant reference before writing anything.
func (s *Store) CreateMeeting(ctx context.Context, m *domain.Meeting, contactIDs []string) error {
	row, err := meetingRowFrom(m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkContactRefs(contactIDs); err != nil {
		return err
	}
	s.meetings[row.id] = row
	s.addParticipants(row.id, contactIDs)
	return nil
}

func (s *Store) UpdateMeeting(ctx context.Context, m *domain.Meeting, contactIDs []string) error {
	row, err := meetingRowFrom(m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.meetings[m.ID]
	if !ok {
		return apperrors.NotFound("meeting", m.ID)
	}
	if err := s.checkContactRefs(contactIDs); err != nil {
		return err
	}
	row.createdAt = old.createdAt
	m.CreatedAt = old.createdAt
	s.meetings[m.ID] = row
	s.dropParticipants(m.ID)
	s.addParticipants(m.ID, contactIDs)
	return nil
}

func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[id]; !ok {
		return apperrors.NotFound("meeting", id)
	}
	s.dropParticipants(id)
	kept := s.reminders[:0]
	for _, r := range s.reminders {
		if r.MeetingID != id {
			kept = append(kept, r)
		}
	}
	s.reminders = kept
	delete(s.meetings, id)
	return nil
}

func (s *Store) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.meetings[id]
	if !ok {
		return nil, apperrors.NotFound("meeting", id)
	}
	m, err := s.meeting(r, true)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) ListMeetings(ctx context.Context, p filter.Predicate) ([]domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMeetings(p, true)
}

func (s *Store) CountMeetings(ctx context.Context, p filter.Predicate) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countMeetings(p), nil
}

func (s *Store) listMeetings(p filter.Predicate, withReminders bool) ([]domain.Meeting, error) {
	var rows []*meetingRow
	for _, r := range s.meetings {
		if p.Match(meetingRecord{r}) {
			rows = append(rows, r)
		}
	}
	sortRecords(rows, p, func(r *meetingRow) filter.Record { return meetingRecord{r} }, func(r *meetingRow) string { return r.id })
	out := make([]domain.Meeting, 0, len(rows))
	for _, r := range rows {
		m, err := s.meeting(r, withReminders)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) countMeetings(p filter.Predicate) int {
	n := 0
	for _, r := range s.meetings {
		if p.Match(meetingRecord{r}) {
			n++
		}
	}
	return n
}

func (s *Store) meeting(r *meetingRow, withReminders bool) (domain.Meeting, error) {
	topics, err := arrayfield.Decode(r.keyTopics)
	if err != nil {
		return domain.Meeting{}, err
	}
	items, err := arrayfield.Decode(r.actionItems)
	if err != nil {
		return domain.Meeting{}, err
	}
	m := domain.Meeting{
		ID:           r.id,
		Title:        r.title,
		Description:  r.description,
		MeetingType:  r.meetingType,
		Status:       r.status,
		StartTime:    r.startTime,
		EndTime:      r.endTime,
		Location:     r.location,
		KeyTopics:    topics,
		ActionItems:  items,
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
		Participants: []domain.Participant{},
	}
	for _, p := range s.participants {
		if p.meetingID != r.id {
			continue
		}
		part := domain.Participant{ID: p.id, MeetingID: p.meetingID, ContactID: p.contactID}
		if ct, ok := s.contacts[p.contactID]; ok {
			c, err := s.contact(ct, true)
			if err != nil {
				return domain.Meeting{}, err
			}
			part.Contact = &c
		}
		m.Participants = append(m.Participants, part)
	}
	if withReminders {
		m.Reminders = s.remindersFor(r.id)
	}
	return m, nil
}

func (s *Store) remindersFor(meetingID string) []domain.Reminder {
	out := []domain.Reminder{}
	for _, r := range s.reminders {
		if r.MeetingID == meetingID {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out
}

func (s *Store) checkContactRefs(ids []string) error {
	var missing []string
	for _, id := range ids {
		if _, ok := s.contacts[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperrors.MissingReference("contact", missing...)
	}
	return nil
}

func (s *Store) addParticipants(meetingID string, contactIDs []string) {
	for _, id := range contactIDs {
		s.participants = append(s.participants, participantRow{id: uuid.NewString(), meetingID: meetingID, contactID: id})
	}
}

func (s *Store) dropParticipants(meetingID string) {
	kept := s.participants[:0]
	for _, p := range s.participants {
		if p.meetingID != meetingID {
			kept = append(kept, p)
		}
	}
	s.participants = kept
}

func meetingRowFrom(m *domain.Meeting) (*meetingRow, error) {
	topics, err := arrayfield.Encode(m.KeyTopics)
	if err != nil {
		return nil, err
	}
	items, err := arrayfield.Encode(m.ActionItems)
	if err != nil {
		return nil, err
	}
	return &meetingRow{
		id:          m.ID,
		title:       m.Title,
		description: clone(m.Description),
		meetingType: m.MeetingType,
		status:      m.Status,
		startTime:   m.StartTime,
		endTime:     m.EndTime,
		location:    clone(m.Location),
		keyTopics:   topics,
		actionItems: items,
		createdAt:   m.CreatedAt,
		updatedAt:   m.UpdatedAt,
	}, nil
}
