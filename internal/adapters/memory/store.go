// Package memory is an in-process implementation of the repository ports. It
// keeps array fields in their encoded form so reads and writes cross the same
// codec boundary as the Postgres adapter. One mutex guards everything, which
// makes every multi-row write atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"boothbook/internal/arrayfield"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
	"boothbook/internal/ports"
)

type companyRow struct {
	id           string
	name         string
	industry     *string
	description  *string
	website      *string
	headquarters *string
	projects     *string
	keyPersonnel *string
	createdAt    time.Time
	updatedAt    time.Time
}

type contactRow struct {
	id        string
	name      string
	companyID *string
	email     *string
	phone     *string
	position  *string
	notes     *string
	createdAt time.Time
	updatedAt time.Time
}

type meetingRow struct {
	id          string
	title       string
	description *string
	meetingType domain.MeetingType
	status      domain.MeetingStatus
	startTime   time.Time
	endTime     time.Time
	location    *string
	keyTopics   *string
	actionItems *string
	createdAt   time.Time
	updatedAt   time.Time
}

type participantRow struct {
	id        string
	meetingID string
	contactID string
}

type Store struct {
	mu           sync.RWMutex
	companies    map[string]*companyRow
	contacts     map[string]*contactRow
	meetings     map[string]*meetingRow
	participants []participantRow // insertion order
	reminders    []*domain.Reminder
}

var (
	_ ports.CompanyRepository  = (*Store)(nil)
	_ ports.ContactRepository  = (*Store)(nil)
	_ ports.MeetingRepository  = (*Store)(nil)
	_ ports.ReminderRepository = (*Store)(nil)
	_ ports.ReminderQueue      = (*Store)(nil)
	_ ports.SnapshotReader     = (*Store)(nil)
	_ ports.StatsReader        = (*Store)(nil)
)

func New() *Store {
	return &Store{
		companies: map[string]*companyRow{},
		contacts:  map[string]*contactRow{},
		meetings:  map[string]*meetingRow{},
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Close exists so Store can stand in for the Postgres DB in main.
func (s *Store) Close() {}

func (s *Store) ReadSnapshot(ctx context.Context, fn func(context.Context, ports.StatsReader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, snapshot{s})
}

// filter.Record views over rows.

type companyRecord struct{ r *companyRow }

func (c companyRecord) Text(f filter.Field) (string, bool) {
	switch f {
	case filter.CompanyName:
		return c.r.name, true
	case filter.CompanyIndustry:
		return deref(c.r.industry)
	case filter.CompanyDescription:
		return deref(c.r.description)
	}
	return "", false
}

func (c companyRecord) Time(filter.Field) (time.Time, bool) { return time.Time{}, false }

type contactRecord struct{ r *contactRow }

func (c contactRecord) Text(f filter.Field) (string, bool) {
	switch f {
	case filter.ContactName:
		return c.r.name, true
	case filter.ContactEmail:
		return deref(c.r.email)
	case filter.ContactPosition:
		return deref(c.r.position)
	case filter.ContactCompanyID:
		return deref(c.r.companyID)
	}
	return "", false
}

func (c contactRecord) Time(filter.Field) (time.Time, bool) { return time.Time{}, false }

type meetingRecord struct{ r *meetingRow }

func (m meetingRecord) Text(f filter.Field) (string, bool) {
	switch f {
	case filter.MeetingStatus:
		return string(m.r.status), true
	case filter.MeetingType:
		return string(m.r.meetingType), true
	}
	return "", false
}

func (m meetingRecord) Time(f filter.Field) (time.Time, bool) {
	if f == filter.MeetingStartTime {
		return m.r.startTime, true
	}
	return time.Time{}, false
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

// sortRecords orders by the predicate, then id, matching the SQL ORDER BY.
func sortRecords[T any](items []T, p filter.Predicate, rec func(T) filter.Record, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := rec(items[i]), rec(items[j])
		if p.Less(a, b) {
			return true
		}
		if p.Less(b, a) {
			return false
		}
		return id(items[i]) < id(items[j])
	})
}

func (s *Store) decodeCompany(r *companyRow) (domain.Company, error) {
	projects, err := arrayfield.Decode(r.projects)
	if err != nil {
		return domain.Company{}, err
	}
	people, err := arrayfield.Decode(r.keyPersonnel)
	if err != nil {
		return domain.Company{}, err
	}
	return domain.Company{
		ID:           r.id,
		Name:         r.name,
		Industry:     r.industry,
		Description:  r.description,
		Website:      r.website,
		Headquarters: r.headquarters,
		Projects:     projects,
		KeyPersonnel: people,
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
	}, nil
}

func (s *Store) companySummary(id *string) (*domain.CompanySummary, error) {
	if id == nil {
		return nil, nil
	}
	r, ok := s.companies[*id]
	if !ok {
		return nil, nil
	}
	c, err := s.decodeCompany(r)
	if err != nil {
		return nil, err
	}
	return &domain.CompanySummary{
		ID:           c.ID,
		Name:         c.Name,
		Industry:     c.Industry,
		Description:  c.Description,
		Website:      c.Website,
		Headquarters: c.Headquarters,
		Projects:     c.Projects,
		KeyPersonnel: c.KeyPersonnel,
	}, nil
}

func (s *Store) contact(r *contactRow, withCompany bool) (domain.Contact, error) {
	c := domain.Contact{
		ID:        r.id,
		Name:      r.name,
		CompanyID: r.companyID,
		Email:     r.email,
		Phone:     r.phone,
		Position:  r.position,
		Notes:     r.notes,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
	if withCompany {
		summary, err := s.companySummary(r.companyID)
		if err != nil {
			return domain.Contact{}, err
		}
		c.Company = summary
	}
	return c, nil
}
