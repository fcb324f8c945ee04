package reminderrunner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boothbook/internal/adapters/memory"
	"boothbook/internal/domain"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (n *recordingNotifier) Notify(_ context.Context, r domain.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, r.ID)
	if n.fail[r.ID] {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.seen)
}

var now = time.Date(2025, 9, 22, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, remindAt map[string]time.Time) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.CreateMeeting(ctx, &domain.Meeting{
		ID: "m1", Title: "Dinner", MeetingType: domain.MeetingTypeDinner, Status: domain.StatusScheduled,
		StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour),
	}, nil))
	for id, at := range remindAt {
		require.NoError(t, s.CreateReminder(ctx, &domain.Reminder{ID: id, MeetingID: "m1", RemindAt: at, Status: domain.ReminderPending}))
	}
	return s
}

func statuses(t *testing.T, s *memory.Store) map[string]domain.Reminder {
	t.Helper()
	list, err := s.ListReminders(context.Background(), "m1")
	require.NoError(t, err)
	out := map[string]domain.Reminder{}
	for _, r := range list {
		out[r.ID] = r
	}
	return out
}

func TestDeliver_MarksSentOrFailed(t *testing.T) {
	ctx := context.Background()
	s := seed(t, map[string]time.Time{"ok": now.Add(-time.Minute), "bad": now.Add(-2 * time.Minute)})
	n := &recordingNotifier{fail: map[string]bool{"bad": true}}
	clock := func() time.Time { return now }

	for i := 0; i < 2; i++ {
		r, found, err := s.ClaimDue(ctx, now)
		require.NoError(t, err)
		require.True(t, found)
		Deliver(ctx, s, n, zap.NewNop(), r, clock)
	}

	got := statuses(t, s)
	assert.Equal(t, domain.ReminderSent, got["ok"].Status)
	require.NotNil(t, got["ok"].SentAt)
	assert.True(t, got["ok"].SentAt.Equal(now))
	assert.Equal(t, domain.ReminderFailed, got["bad"].Status)
	require.NotNil(t, got["bad"].LastError)
	assert.Equal(t, "smtp unavailable", *got["bad"].LastError)
	assert.Equal(t, 1, got["bad"].Attempts)
}

func TestRun_DeliversDueRemindersOnly(t *testing.T) {
	s := seed(t, map[string]time.Time{
		"a":      now.Add(-time.Hour),
		"b":      now.Add(-time.Minute),
		"future": now.Add(time.Hour),
	})
	n := &recordingNotifier{}
	ctx, cancel := context.WithCancel(context.Background())

	wg := Run(ctx, s, n, zap.NewNop(), Options{
		Concurrency:  2,
		PollInterval: 10 * time.Millisecond,
		Now:          func() time.Time { return now },
	})
	assert.Eventually(t, func() bool {
		got := statuses(t, s)
		return got["a"].Status == domain.ReminderSent && got["b"].Status == domain.ReminderSent
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()

	assert.Equal(t, 2, n.count())
	assert.Equal(t, domain.ReminderPending, statuses(t, s)["future"].Status)
}

func TestRun_NoWorkers(t *testing.T) {
	wg := Run(context.Background(), memory.New(), &recordingNotifier{}, zap.NewNop(), Options{})
	wg.Wait()
}
