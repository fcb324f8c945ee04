package meetings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boothbook/internal/adapters/memory"
	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

var lima = time.FixedZone("PET", -5*60*60)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateCompany(ctx, &domain.Company{ID: "co1", Name: "Acme Mining"}))
	co := "co1"
	for id, name := range map[string]string{"c1": "Ana", "c2": "Luis", "c3": "Carla"} {
		require.NoError(t, store.CreateContact(ctx, &domain.Contact{ID: id, Name: name, CompanyID: &co}))
	}
	return New(store, lima, zap.NewNop()), store
}

func scheduleInput(start time.Time, participants ...string) domain.ScheduleInput {
	return domain.ScheduleInput{
		Title:                 "Breakfast with Acme",
		MeetingType:           domain.MeetingTypeBreakfast,
		StartTime:             start,
		EndTime:               start.Add(time.Hour),
		KeyTopics:             []string{"fleet", " "},
		ParticipantContactIDs: participants,
	}
}

func TestSchedule_CreatesScheduledMeetingWithParticipants(t *testing.T) {
	svc, _ := newService(t)
	start := time.Date(2025, 9, 22, 8, 0, 0, 0, lima)

	m, err := svc.Schedule(context.Background(), scheduleInput(start, "c2", " c1 ", "c2"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, m.Status)
	assert.Equal(t, []string{"fleet"}, m.KeyTopics)
	assert.Equal(t, []string{}, m.ActionItems)
	require.Len(t, m.Participants, 2)
	assert.Equal(t, "c2", m.Participants[0].ContactID)
	assert.Equal(t, "c1", m.Participants[1].ContactID)
	require.NotNil(t, m.Participants[0].Contact)
	require.NotNil(t, m.Participants[0].Contact.Company)
	assert.Equal(t, "Acme Mining", m.Participants[0].Contact.Company.Name)
}

func TestSchedule_UnknownParticipantCreatesNothing(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	start := time.Date(2025, 9, 22, 8, 0, 0, 0, lima)

	_, err := svc.Schedule(ctx, scheduleInput(start, "c1", "c2", "nonexistent"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrReferentialIntegrity))

	n, err := store.CountMeetings(ctx, filter.Predicate{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSchedule_Validation(t *testing.T) {
	svc, _ := newService(t)
	start := time.Date(2025, 9, 22, 8, 0, 0, 0, lima)

	tests := map[string]func(in *domain.ScheduleInput){
		"blank title":       func(in *domain.ScheduleInput) { in.Title = " " },
		"unknown type":      func(in *domain.ScheduleInput) { in.MeetingType = "BRUNCH" },
		"missing start":     func(in *domain.ScheduleInput) { in.StartTime = time.Time{} },
		"end before start":  func(in *domain.ScheduleInput) { in.EndTime = in.StartTime.Add(-time.Minute) },
		"end equals start":  func(in *domain.ScheduleInput) { in.EndTime = in.StartTime },
		"blank participant": func(in *domain.ScheduleInput) { in.ParticipantContactIDs = []string{"c1", ""} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := scheduleInput(start, "c1")
			mutate(&in)
			_, err := svc.Schedule(context.Background(), in)
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)
		})
	}
}

func TestUpdate_ChangesStatusAndParticipants(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	start := time.Date(2025, 9, 22, 8, 0, 0, 0, lima)
	m, err := svc.Schedule(ctx, scheduleInput(start, "c1"))
	require.NoError(t, err)

	upd := domain.MeetingUpdate{
		Title:                 "Lunch with Acme",
		MeetingType:           domain.MeetingTypeLunch,
		Status:                domain.StatusCompleted,
		StartTime:             start.Add(4 * time.Hour),
		EndTime:               start.Add(5 * time.Hour),
		ActionItems:           []string{"send proposal"},
		ParticipantContactIDs: []string{"c3"},
	}
	got, err := svc.Update(ctx, m.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, []string{"send proposal"}, got.ActionItems)
	assert.Equal(t, []string{}, got.KeyTopics)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, "c3", got.Participants[0].ContactID)

	// Any status may follow any other.
	upd.Status = domain.StatusScheduled
	_, err = svc.Update(ctx, m.ID, upd)
	require.NoError(t, err)

	upd.Status = "DONE"
	_, err = svc.Update(ctx, m.ID, upd)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	upd.Status = domain.StatusCancelled
	_, err = svc.Update(ctx, "missing", upd)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestList_DateUsesCalendarDayInLocation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	// 23:30 in Lima on the 22nd is already the 23rd in UTC.
	late := time.Date(2025, 9, 22, 23, 30, 0, 0, lima)
	early := time.Date(2025, 9, 22, 0, 0, 0, 0, lima)
	next := time.Date(2025, 9, 23, 0, 0, 0, 0, lima)
	for _, start := range []time.Time{late, early, next} {
		_, err := svc.Schedule(ctx, scheduleInput(start, "c1"))
		require.NoError(t, err)
	}

	day := time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC)
	got, err := svc.List(ctx, filter.MeetingFilter{Date: &day})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].StartTime.Equal(early))
	assert.True(t, got[1].StartTime.Equal(late))

	got, err = svc.List(ctx, filter.MeetingFilter{Date: &day, Status: domain.StatusCancelled})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.List(ctx, filter.MeetingFilter{Type: "BRUNCH"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestDelete_RemovesMeeting(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	m, err := svc.Schedule(ctx, scheduleInput(time.Now(), "c1", "c2"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, m.ID))
	_, err = svc.Get(ctx, m.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
