//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
	"boothbook/internal/ports"
)

// newTestDB starts a fresh Postgres container with the schema migrated.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("boothbook_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Connect(ctx, dsn, Options{MaxConns: 4, QueryTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx, zap.NewNop()))
	return db
}

func strPtr(s string) *string { return &s }

func meeting(id string, start time.Time, status domain.MeetingStatus) *domain.Meeting {
	now := time.Now().UTC()
	return &domain.Meeting{
		ID:          id,
		Title:       "Booth visit " + id,
		MeetingType: domain.MeetingTypeBooth,
		Status:      status,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		KeyTopics:   []string{"fleet", "financing"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestIntegration_Repositories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("company arrays round trip and search", func(t *testing.T) {
		for _, c := range []*domain.Company{
			{ID: "co-acme", Name: "Acme Mining", Projects: []string{"Quellaveco", "Toquepala"}, CreatedAt: now, UpdatedAt: now},
			{ID: "co-zeta", Name: "Zeta Corp", Industry: strPtr("Mining Equipment"), CreatedAt: now, UpdatedAt: now},
			{ID: "co-bank", Name: "Andes Bank", Industry: strPtr("Finance"), CreatedAt: now, UpdatedAt: now},
		} {
			require.NoError(t, db.CreateCompany(ctx, c))
		}

		var raw *string
		require.NoError(t, db.Pool.QueryRow(ctx, `SELECT key_personnel FROM companies WHERE id = 'co-acme'`).Scan(&raw))
		assert.Nil(t, raw)

		got, err := db.ListCompanies(ctx, filter.BuildCompanyFilter(filter.CompanyFilter{Search: "MINING"}))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Acme Mining", got[0].Name)
		assert.Equal(t, []string{"Quellaveco", "Toquepala"}, got[0].Projects)
		assert.Equal(t, []string{}, got[0].KeyPersonnel)
		assert.Equal(t, "Zeta Corp", got[1].Name)
	})

	t.Run("contacts and company delete", func(t *testing.T) {
		require.NoError(t, db.CreateContact(ctx, &domain.Contact{ID: "c-ana", Name: "Ana", CompanyID: strPtr("co-bank"), CreatedAt: now, UpdatedAt: now}))
		err := db.CreateContact(ctx, &domain.Contact{ID: "c-x", Name: "X", CompanyID: strPtr("ghost"), CreatedAt: now, UpdatedAt: now})
		assert.True(t, errors.Is(err, apperrors.ErrReferentialIntegrity), "got %v", err)

		co, err := db.GetCompany(ctx, "co-bank")
		require.NoError(t, err)
		assert.Equal(t, 1, co.Count.Contacts)

		require.NoError(t, db.DeleteCompany(ctx, "co-bank"))
		c, err := db.GetContact(ctx, "c-ana")
		require.NoError(t, err)
		assert.Nil(t, c.CompanyID)
		assert.Nil(t, c.Company)
	})

	t.Run("meeting atomicity and cascade", func(t *testing.T) {
		require.NoError(t, db.CreateContact(ctx, &domain.Contact{ID: "c-luis", Name: "Luis", CompanyID: strPtr("co-acme"), CreatedAt: now, UpdatedAt: now}))

		err := db.CreateMeeting(ctx, meeting("m-bad", now, domain.StatusScheduled), []string{"c-ana", "nonexistent"})
		assert.True(t, errors.Is(err, apperrors.ErrReferentialIntegrity), "got %v", err)
		_, err = db.GetMeeting(ctx, "m-bad")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))

		require.NoError(t, db.CreateMeeting(ctx, meeting("m1", now, domain.StatusScheduled), []string{"c-luis", "c-ana"}))
		require.NoError(t, db.CreateReminder(ctx, &domain.Reminder{
			ID: uuid.NewString(), MeetingID: "m1", RemindAt: now, Status: domain.ReminderPending, CreatedAt: now,
		}))
		m, err := db.GetMeeting(ctx, "m1")
		require.NoError(t, err)
		require.Len(t, m.Participants, 2)
		assert.Equal(t, "c-luis", m.Participants[0].ContactID)
		assert.Equal(t, "Acme Mining", m.Participants[0].Contact.Company.Name)
		assert.Len(t, m.Reminders, 1)

		require.NoError(t, db.DeleteMeeting(ctx, "m1"))
		var n int
		require.NoError(t, db.Pool.QueryRow(ctx, `SELECT count(*) FROM participants WHERE meeting_id = 'm1'`).Scan(&n))
		assert.Zero(t, n)
		require.NoError(t, db.Pool.QueryRow(ctx, `SELECT count(*) FROM reminders WHERE meeting_id = 'm1'`).Scan(&n))
		assert.Zero(t, n)
		assert.True(t, errors.Is(db.DeleteMeeting(ctx, "m1"), apperrors.ErrNotFound))
	})

	t.Run("corrupt array surfaces as decode error", func(t *testing.T) {
		_, err := db.Pool.Exec(ctx, `UPDATE companies SET projects = 'Quellaveco, Toquepala' WHERE id = 'co-acme'`)
		require.NoError(t, err)
		_, err = db.GetCompany(ctx, "co-acme")
		assert.True(t, errors.Is(err, apperrors.ErrDecode), "got %v", err)
	})

	t.Run("check constraint maps to validation", func(t *testing.T) {
		m := meeting("m-backwards", now, domain.StatusScheduled)
		m.EndTime = m.StartTime.Add(-time.Hour)
		err := db.CreateMeeting(ctx, m, nil)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)
	})
}

func TestIntegration_SnapshotAndQueue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	lima := time.FixedZone("PET", -5*60*60)
	day := time.Date(2025, 9, 22, 0, 0, 0, 0, lima)

	require.NoError(t, db.CreateContact(ctx, &domain.Contact{ID: "c1", Name: "Ana", CreatedAt: day, UpdatedAt: day}))
	require.NoError(t, db.CreateMeeting(ctx, meeting("today", day.Add(9*time.Hour), domain.StatusScheduled), []string{"c1"}))
	require.NoError(t, db.CreateMeeting(ctx, meeting("cancelled", day.Add(15*time.Hour), domain.StatusCancelled), nil))
	require.NoError(t, db.CreateMeeting(ctx, meeting("tomorrow", day.Add(24*time.Hour), domain.StatusScheduled), nil))

	today, err := filter.BuildMeetingFilter(filter.MeetingFilter{Date: &day}, lima)
	require.NoError(t, err)
	err = db.ReadSnapshot(ctx, func(ctx context.Context, r ports.StatsReader) error {
		n, err := r.CountMeetings(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		list, err := r.ListMeetings(ctx, today.And(filter.Condition{
			Op: filter.OpEquals, Fields: []filter.Field{filter.MeetingStatus}, Value: string(domain.StatusScheduled),
		}))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "today", list[0].ID)
		require.Len(t, list[0].Participants, 1)
		return nil
	})
	require.NoError(t, err)

	due := day.Add(8 * time.Hour)
	require.NoError(t, db.CreateReminder(ctx, &domain.Reminder{ID: "r1", MeetingID: "today", RemindAt: due, Status: domain.ReminderPending, CreatedAt: day}))
	require.NoError(t, db.CreateReminder(ctx, &domain.Reminder{ID: "r2", MeetingID: "tomorrow", RemindAt: due.Add(24 * time.Hour), Status: domain.ReminderPending, CreatedAt: day}))

	r, found, err := db.ClaimDue(ctx, due)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, domain.ReminderSending, r.Status)
	assert.Equal(t, 1, r.Attempts)

	_, found, err = db.ClaimDue(ctx, due)
	require.NoError(t, err)
	assert.False(t, found)

	stored, err := db.ListReminders(ctx, "today")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.ReminderSending, stored[0].Status)
	assert.Equal(t, 1, stored[0].Attempts)

	require.NoError(t, db.MarkSent(ctx, "r1", due))
	list, err := db.ListReminders(ctx, "today")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.ReminderSent, list[0].Status)
	assert.True(t, errors.Is(db.MarkFailed(ctx, "ghost", "x"), apperrors.ErrNotFound))
}
