package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boothbook/internal/adapters/memory"
	"boothbook/internal/domain"
	"boothbook/internal/ports"
)

var lima = time.FixedZone("PET", -5*60*60)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.CreateCompany(ctx, &domain.Company{ID: "co1", Name: "Acme Mining"}))
	require.NoError(t, s.CreateCompany(ctx, &domain.Company{ID: "co2", Name: "Andes Bank"}))
	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, s.CreateContact(ctx, &domain.Contact{ID: id, Name: id}))
	}
	meetings := []struct {
		id     string
		start  time.Time
		status domain.MeetingStatus
	}{
		{"today-scheduled", time.Date(2025, 9, 22, 9, 0, 0, 0, lima), domain.StatusScheduled},
		{"today-cancelled", time.Date(2025, 9, 22, 15, 0, 0, 0, lima), domain.StatusCancelled},
		{"yesterday-late", time.Date(2025, 9, 21, 23, 59, 0, 0, lima), domain.StatusScheduled},
		{"tomorrow-midnight", time.Date(2025, 9, 23, 0, 0, 0, 0, lima), domain.StatusScheduled},
		{"next-week", time.Date(2025, 9, 29, 9, 0, 0, 0, lima), domain.StatusScheduled},
	}
	for _, m := range meetings {
		require.NoError(t, s.CreateMeeting(ctx, &domain.Meeting{
			ID:          m.id,
			Title:       m.id,
			MeetingType: domain.MeetingTypeBooth,
			Status:      m.status,
			StartTime:   m.start,
			EndTime:     m.start.Add(30 * time.Minute),
		}, []string{"c1"}))
	}
	return s
}

func TestStats_DailyScenario(t *testing.T) {
	svc := New(seed(t), lima, zap.NewNop())

	at := time.Date(2025, 9, 22, 12, 0, 0, 0, lima)
	stats, err := svc.Stats(context.Background(), at)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalContacts)
	assert.Equal(t, 5, stats.TotalMeetings)
	assert.Equal(t, 2, stats.TotalCompanies)
	assert.Equal(t, 2, stats.TodaysMeetingsCount)
	require.Len(t, stats.TodaysScheduledMeetings, 1)
	got := stats.TodaysScheduledMeetings[0]
	assert.Equal(t, "today-scheduled", got.ID)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, "c1", got.Participants[0].Contact.Name)
}

func TestStats_ReferenceInstantIsReadInLocation(t *testing.T) {
	svc := New(seed(t), lima, zap.NewNop())

	// 02:00 UTC on the 23rd is still the 22nd in Lima.
	stats, err := svc.Stats(context.Background(), time.Date(2025, 9, 23, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TodaysMeetingsCount)
}

func TestStats_ZeroReferenceUsesClock(t *testing.T) {
	svc := New(seed(t), lima, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 9, 23, 10, 0, 0, 0, lima) }

	stats, err := svc.Stats(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TodaysMeetingsCount)
	require.Len(t, stats.TodaysScheduledMeetings, 1)
	assert.Equal(t, "tomorrow-midnight", stats.TodaysScheduledMeetings[0].ID)
}

func TestStats_EmptyDayHasEmptyList(t *testing.T) {
	svc := New(memory.New(), lima, zap.NewNop())
	stats, err := svc.Stats(context.Background(), time.Date(2025, 9, 22, 12, 0, 0, 0, lima))
	require.NoError(t, err)
	assert.NotNil(t, stats.TodaysScheduledMeetings)
	assert.Empty(t, stats.TodaysScheduledMeetings)
}

type failingSnapshot struct{ err error }

func (f failingSnapshot) ReadSnapshot(context.Context, func(context.Context, ports.StatsReader) error) error {
	return f.err
}

func TestStats_PropagatesStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := New(failingSnapshot{err: boom}, lima, zap.NewNop())
	_, err := svc.Stats(context.Background(), time.Now())
	assert.ErrorIs(t, err, boom)
}
