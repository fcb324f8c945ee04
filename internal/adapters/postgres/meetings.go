package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"boothbook/internal/apperrors"
	"boothbook/internal/arrayfield"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

const meetingColumns = `m.id, m.title, m.description, m.meeting_type, m.status, m.start_time, m.end_time,
	m.location, m.key_topics, m.action_items, m.created_at, m.updated_at`

// reader runs the read queries against either the pool or a transaction.
type reader struct{ q querier }

// CreateMeeting inserts the meeting and its participants in one transaction.
// Participant references are checked (and share-locked) before any insert.
func (db *DB) CreateMeeting(ctx context.Context, m *domain.Meeting, contactIDs []string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	topics, items, err := encodeMeetingArrays(m)
	if err != nil {
		return err
	}
	err = db.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockContacts(ctx, tx, contactIDs); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO meetings (id, title, description, meeting_type, status, start_time, end_time,
				location, key_topics, action_items, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, m.ID, m.Title, m.Description, m.MeetingType, m.Status, m.StartTime, m.EndTime,
			m.Location, topics, items, m.CreatedAt, m.UpdatedAt); err != nil {
			return err
		}
		return insertParticipants(ctx, tx, m.ID, contactIDs)
	})
	return classify("create meeting", err)
}

// UpdateMeeting overwrites the meeting row and replaces its participant set atomically.
func (db *DB) UpdateMeeting(ctx context.Context, m *domain.Meeting, contactIDs []string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	topics, items, err := encodeMeetingArrays(m)
	if err != nil {
		return err
	}
	err = db.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT created_at FROM meetings WHERE id = $1 FOR UPDATE`, m.ID).Scan(&m.CreatedAt)
		if err != nil {
			return notFoundOr("update meeting", "meeting", m.ID, err)
		}
		if err := lockContacts(ctx, tx, contactIDs); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE meetings
			SET title = $2, description = $3, meeting_type = $4, status = $5, start_time = $6, end_time = $7,
				location = $8, key_topics = $9, action_items = $10, updated_at = $11
			WHERE id = $1
		`, m.ID, m.Title, m.Description, m.MeetingType, m.Status, m.StartTime, m.EndTime,
			m.Location, topics, items, m.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM participants WHERE meeting_id = $1`, m.ID); err != nil {
			return err
		}
		return insertParticipants(ctx, tx, m.ID, contactIDs)
	})
	return classify("update meeting", err)
}

// DeleteMeeting removes reminders, participants and the meeting together.
func (db *DB) DeleteMeeting(ctx context.Context, id string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	err := db.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reminders WHERE meeting_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM participants WHERE meeting_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("meeting", id)
		}
		return nil
	})
	return classify("delete meeting", err)
}

func (db *DB) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	m, err := scanMeeting(db.Pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings m WHERE m.id = $1`, id))
	if err != nil {
		return nil, notFoundOr("get meeting", "meeting", id, err)
	}
	list := []domain.Meeting{m}
	r := reader{db.Pool}
	if err := r.attachParticipants(ctx, list); err != nil {
		return nil, classify("get meeting participants", err)
	}
	if err := r.attachReminders(ctx, list); err != nil {
		return nil, classify("get meeting reminders", err)
	}
	return &list[0], nil
}

func (db *DB) ListMeetings(ctx context.Context, p filter.Predicate) ([]domain.Meeting, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	r := reader{db.Pool}
	out, err := r.ListMeetings(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := r.attachReminders(ctx, out); err != nil {
		return nil, classify("list meeting reminders", err)
	}
	return out, nil
}

// ListMeetings returns matching meetings with participants resolved, without reminders.
func (r reader) ListMeetings(ctx context.Context, p filter.Predicate) ([]domain.Meeting, error) {
	q, err := render(p, "m.id")
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, `SELECT `+meetingColumns+` FROM meetings m`+q.where+q.order, q.args...)
	if err != nil {
		return nil, classify("list meetings", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Meeting, error) { return scanMeeting(row) })
	if err != nil {
		return nil, classify("list meetings", err)
	}
	if err := r.attachParticipants(ctx, out); err != nil {
		return nil, classify("list meeting participants", err)
	}
	return out, nil
}

func (r reader) CountMeetings(ctx context.Context, p filter.Predicate) (int, error) {
	p.Order = filter.Order{}
	q, err := render(p, "m.id")
	if err != nil {
		return 0, err
	}
	var n int
	err = r.q.QueryRow(ctx, `SELECT count(*) FROM meetings m`+q.where, q.args...).Scan(&n)
	return n, classify("count meetings", err)
}

func (r reader) attachParticipants(ctx context.Context, meetings []domain.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}
	ids, index := meetingIndex(meetings)
	for i := range meetings {
		meetings[i].Participants = []domain.Participant{}
	}
	rows, err := r.q.Query(ctx, `SELECT p.id, p.meeting_id, `+contactColumns+`, `+companySummaryColumns+`
		FROM participants p
		JOIN contacts ct ON ct.id = p.contact_id
		LEFT JOIN companies co ON co.id = ct.company_id
		WHERE p.meeting_id = ANY($1)
		ORDER BY p.meeting_id, p.position`, ids)
	if err != nil {
		return err
	}
	parts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Participant, error) {
		var (
			p domain.Participant
			s contactScan
		)
		if err := row.Scan(append([]any{&p.ID, &p.MeetingID}, s.targets()...)...); err != nil {
			return p, err
		}
		c, err := s.contact()
		if err != nil {
			return p, err
		}
		p.ContactID = c.ID
		p.Contact = &c
		return p, nil
	})
	if err != nil {
		return err
	}
	for _, p := range parts {
		i := index[p.MeetingID]
		meetings[i].Participants = append(meetings[i].Participants, p)
	}
	return nil
}

func (r reader) attachReminders(ctx context.Context, meetings []domain.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}
	ids, index := meetingIndex(meetings)
	rows, err := r.q.Query(ctx, `SELECT `+reminderColumns+` FROM reminders
		WHERE meeting_id = ANY($1) ORDER BY remind_at, id`, ids)
	if err != nil {
		return err
	}
	reminders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Reminder, error) { return scanReminder(row) })
	if err != nil {
		return err
	}
	for _, rem := range reminders {
		i := index[rem.MeetingID]
		meetings[i].Reminders = append(meetings[i].Reminders, rem)
	}
	return nil
}

func meetingIndex(meetings []domain.Meeting) ([]string, map[string]int) {
	ids := make([]string, len(meetings))
	index := make(map[string]int, len(meetings))
	for i := range meetings {
		ids[i] = meetings[i].ID
		index[meetings[i].ID] = i
	}
	return ids, index
}

func scanMeeting(row pgx.Row) (domain.Meeting, error) {
	var (
		m             domain.Meeting
		topics, items *string
	)
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.MeetingType, &m.Status, &m.StartTime, &m.EndTime,
		&m.Location, &topics, &items, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return m, err
	}
	var err error
	if m.KeyTopics, err = arrayfield.Decode(topics); err != nil {
		return m, err
	}
	if m.ActionItems, err = arrayfield.Decode(items); err != nil {
		return m, err
	}
	return m, nil
}

// lockContacts fails with a referential-integrity error naming every unknown
// id. Found rows are share-locked until the transaction ends so they cannot be
// deleted before the participant rows land.
func lockContacts(ctx context.Context, tx pgx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := tx.Query(ctx, `SELECT id FROM contacts WHERE id = ANY($1) FOR SHARE`, ids)
	if err != nil {
		return err
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperrors.MissingReference("contact", missing...)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx pgx.Tx, meetingID string, contactIDs []string) error {
	if len(contactIDs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, id := range contactIDs {
		batch.Queue(`INSERT INTO participants (id, meeting_id, contact_id, position) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), meetingID, id, i)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func encodeMeetingArrays(m *domain.Meeting) (topics, items *string, err error) {
	if topics, err = arrayfield.Encode(m.KeyTopics); err != nil {
		return nil, nil, err
	}
	if items, err = arrayfield.Encode(m.ActionItems); err != nil {
		return nil, nil, err
	}
	return topics, items, nil
}
