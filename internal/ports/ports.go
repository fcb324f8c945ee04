package ports

import (
	"context"
	"time"

	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

// Companies manages companies and company search.
type Companies interface {
	Create(ctx context.Context, in domain.CompanyInput) (*domain.Company, error)
	Update(ctx context.Context, id string, in domain.CompanyInput) (*domain.Company, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Company, error)
	List(ctx context.Context, f filter.CompanyFilter) ([]domain.Company, error)
}

type Contacts interface {
	Create(ctx context.Context, in domain.ContactInput) (*domain.Contact, error)
	Update(ctx context.Context, id string, in domain.ContactInput) (*domain.Contact, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Contact, error)
	List(ctx context.Context, f filter.ContactFilter) ([]domain.Contact, error)
}

// Meetings schedules meetings and manages their participant sets.
type Meetings interface {
	Schedule(ctx context.Context, in domain.ScheduleInput) (*domain.Meeting, error)
	Update(ctx context.Context, id string, in domain.MeetingUpdate) (*domain.Meeting, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Meeting, error)
	List(ctx context.Context, f filter.MeetingFilter) ([]domain.Meeting, error)
}

type Reminders interface {
	Create(ctx context.Context, meetingID string, in domain.ReminderInput) (*domain.Reminder, error)
	List(ctx context.Context, meetingID string) ([]domain.Reminder, error)
}

// Dashboard computes the daily aggregate for the day containing at.
type Dashboard interface {
	Stats(ctx context.Context, at time.Time) (domain.DashboardStats, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
