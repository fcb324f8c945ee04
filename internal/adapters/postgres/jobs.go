package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
)

const reminderColumns = `id, meeting_id, remind_at, message, status, attempts, sent_at, last_error, created_at`

func (db *DB) CreateReminder(ctx context.Context, r *domain.Reminder) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO reminders (id, meeting_id, remind_at, message, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, r.MeetingID, r.RemindAt, r.Message, r.Status, r.Attempts, r.CreatedAt)
	return classify("create reminder", err)
}

func (db *DB) ListReminders(ctx context.Context, meetingID string) ([]domain.Reminder, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	var exists bool
	if err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM meetings WHERE id = $1)`, meetingID).Scan(&exists); err != nil {
		return nil, classify("list reminders", err)
	}
	if !exists {
		return nil, apperrors.NotFound("meeting", meetingID)
	}
	rows, err := db.Pool.Query(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE meeting_id = $1 ORDER BY remind_at, id`, meetingID)
	if err != nil {
		return nil, classify("list reminders", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Reminder, error) { return scanReminder(row) })
	if err != nil {
		return nil, classify("list reminders", err)
	}
	return out, nil
}

// ClaimDue marks the oldest due pending reminder SENDING and returns it. The
// row is picked with SKIP LOCKED in the same statement, so concurrent
// claimers never get the same reminder.
func (db *DB) ClaimDue(ctx context.Context, now time.Time) (domain.Reminder, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	r, err := scanReminder(db.Pool.QueryRow(ctx, `
		UPDATE reminders
		SET status = 'SENDING', attempts = attempts + 1
		WHERE id = (
			SELECT id FROM reminders
			WHERE status = 'PENDING' AND remind_at <= $1
			ORDER BY remind_at, id
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING `+reminderColumns, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reminder{}, false, nil
	}
	if err != nil {
		return domain.Reminder{}, false, classify("claim reminder", err)
	}
	return r, true, nil
}

func (db *DB) MarkSent(ctx context.Context, id string, at time.Time) error {
	return db.updateReminder(ctx, "mark reminder sent", id,
		`UPDATE reminders SET status = 'SENT', sent_at = $2, last_error = NULL WHERE id = $1`, at)
}

func (db *DB) MarkFailed(ctx context.Context, id string, reason string) error {
	return db.updateReminder(ctx, "mark reminder failed", id,
		`UPDATE reminders SET status = 'FAILED', last_error = $2 WHERE id = $1`, reason)
}

func (db *DB) updateReminder(ctx context.Context, op, id, sql string, arg any) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	tag, err := db.Pool.Exec(ctx, sql, id, arg)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("reminder", id)
	}
	return nil
}

func scanReminder(row pgx.Row) (domain.Reminder, error) {
	var r domain.Reminder
	err := row.Scan(&r.ID, &r.MeetingID, &r.RemindAt, &r.Message, &r.Status, &r.Attempts, &r.SentAt, &r.LastError, &r.CreatedAt)
	return r, err
}
