package ports

import (
	"context"

	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

// Every repository returns errors classified by apperrors: ErrNotFound for
// unknown ids, ErrReferentialIntegrity for dangling references and ErrStorage
// for anything the store itself failed at.

// CompanyRepository reads return companies with decoded arrays, contacts and contact count.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, c *domain.Company) error
	UpdateCompany(ctx context.Context, c *domain.Company) error
	// DeleteCompany detaches the company's contacts (company id set to absent) before deleting it.
	DeleteCompany(ctx context.Context, id string) error
	GetCompany(ctx context.Context, id string) (*domain.Company, error)
	ListCompanies(ctx context.Context, p filter.Predicate) ([]domain.Company, error)
}

type ContactRepository interface {
	CreateContact(ctx context.Context, c *domain.Contact) error
	UpdateContact(ctx context.Context, c *domain.Contact) error
	DeleteContact(ctx context.Context, id string) error
	GetContact(ctx context.Context, id string) (*domain.Contact, error)
	ListContacts(ctx context.Context, p filter.Predicate) ([]domain.Contact, error)
}

// MeetingRepository writes a meeting and its participant rows in one transaction.
// Reads include participants (contact and company resolved) and reminders.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, m *domain.Meeting, contactIDs []string) error
	// UpdateMeeting replaces the meeting's fields and its participant set.
	UpdateMeeting(ctx context.Context, m *domain.Meeting, contactIDs []string) error
	// DeleteMeeting removes the meeting with its participants and reminders.
	DeleteMeeting(ctx context.Context, id string) error
	GetMeeting(ctx context.Context, id string) (*domain.Meeting, error)
	ListMeetings(ctx context.Context, p filter.Predicate) ([]domain.Meeting, error)
}

type ReminderRepository interface {
	CreateReminder(ctx context.Context, r *domain.Reminder) error
	// ListReminders returns the meeting's reminders by remind time, or ErrNotFound for an unknown meeting.
	ListReminders(ctx context.Context, meetingID string) ([]domain.Reminder, error)
}

// StatsReader is the read surface the dashboard needs.
type StatsReader interface {
	CountCompanies(ctx context.Context) (int, error)
	CountContacts(ctx context.Context) (int, error)
	CountMeetings(ctx context.Context, p filter.Predicate) (int, error)
	ListMeetings(ctx context.Context, p filter.Predicate) ([]domain.Meeting, error)
}

// SnapshotReader runs fn against the most consistent view the store can offer.
// This is best effort, not serializable isolation.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, r StatsReader) error) error
}
