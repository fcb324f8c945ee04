package domain

import "time"

// Core domain models. Array-valued attributes are plain slices here; their
// encoded at-rest form never leaves the repository adapters.

type MeetingType string

const (
	MeetingTypeBreakfast    MeetingType = "BREAKFAST"
	MeetingTypeLunch        MeetingType = "LUNCH"
	MeetingTypeDinner       MeetingType = "DINNER"
	MeetingTypeBooth        MeetingType = "BOOTH_MEETING"
	MeetingTypeInternal     MeetingType = "INTERNAL_MEETING"
	MeetingTypePresentation MeetingType = "PRESENTATION"
	MeetingTypeNetworking   MeetingType = "NETWORKING"
)

func (t MeetingType) Valid() bool {
	switch t {
	case MeetingTypeBreakfast, MeetingTypeLunch, MeetingTypeDinner, MeetingTypeBooth,
		MeetingTypeInternal, MeetingTypePresentation, MeetingTypeNetworking:
		return true
	}
	return false
}

type MeetingStatus string

const (
	StatusScheduled   MeetingStatus = "SCHEDULED"
	StatusInProgress  MeetingStatus = "IN_PROGRESS"
	StatusCompleted   MeetingStatus = "COMPLETED"
	StatusCancelled   MeetingStatus = "CANCELLED"
	StatusRescheduled MeetingStatus = "RESCHEDULED"
)

// Valid reports membership only; any status may follow any other.
func (s MeetingStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "PENDING"
	ReminderSending ReminderStatus = "SENDING"
	ReminderSent    ReminderStatus = "SENT"
	ReminderFailed  ReminderStatus = "FAILED"
)

type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Industry     *string   `json:"industry"`
	Description  *string   `json:"description"`
	Website      *string   `json:"website"`
	Headquarters *string   `json:"headquarters"`
	Projects     []string  `json:"projects"`
	KeyPersonnel []string  `json:"keyPersonnel"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Populated on reads.
	WebsiteDomain *string      `json:"websiteDomain,omitempty"`
	Contacts      []Contact    `json:"contacts"`
	Count         CompanyCount `json:"_count"`
}

type CompanyCount struct {
	Contacts int `json:"contacts"`
}

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CompanyID *string   `json:"companyId"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Position  *string   `json:"position"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Company *CompanySummary `json:"company,omitempty"`
}

// CompanySummary is the company as embedded under a contact: no nested contacts.
type CompanySummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Industry     *string  `json:"industry"`
	Description  *string  `json:"description"`
	Website      *string  `json:"website"`
	Headquarters *string  `json:"headquarters"`
	Projects     []string `json:"projects"`
	KeyPersonnel []string `json:"keyPersonnel"`
}

type Meeting struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	MeetingType MeetingType   `json:"meetingType"`
	Status      MeetingStatus `json:"status"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     time.Time     `json:"endTime"`
	Location    *string       `json:"location"`
	KeyTopics   []string      `json:"keyTopics"`
	ActionItems []string      `json:"actionItems"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	Participants []Participant `json:"participants"`
	Reminders    []Reminder    `json:"reminders,omitempty"`
}

type Participant struct {
	ID        string   `json:"id"`
	MeetingID string   `json:"meetingId"`
	ContactID string   `json:"contactId"`
	Contact   *Contact `json:"contact,omitempty"`
}

type Reminder struct {
	ID        string         `json:"id"`
	MeetingID string         `json:"meetingId"`
	RemindAt  time.Time      `json:"remindAt"`
	Message   *string        `json:"message"`
	Status    ReminderStatus `json:"status"`
	Attempts  int            `json:"attempts"`
	SentAt    *time.Time     `json:"sentAt"`
	LastError *string        `json:"lastError,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// DashboardStats is the daily aggregate. JSON names follow the existing client.
type DashboardStats struct {
	TotalContacts           int       `json:"totalContacts"`
	TotalMeetings           int       `json:"totalMeetings"`
	TodaysMeetingsCount     int       `json:"todaysMeetings"`
	TotalCompanies          int       `json:"totalCompanies"`
	TodaysScheduledMeetings []Meeting `json:"upcomingMeetings"`
}
