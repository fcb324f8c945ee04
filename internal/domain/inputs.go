package domain

import "time"

// Inputs carry the complete set of mutable fields. Updates are full-record:
// a nil optional field is stored as absent.

type CompanyInput struct {
	Name         string   `json:"name"`
	Industry     *string  `json:"industry"`
	Description  *string  `json:"description"`
	Website      *string  `json:"website"`
	Headquarters *string  `json:"headquarters"`
	Projects     []string `json:"projects"`
	KeyPersonnel []string `json:"keyPersonnel"`
}

type ContactInput struct {
	Name      string  `json:"name"`
	CompanyID *string `json:"companyId"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Position  *string `json:"position"`
	Notes     *string `json:"notes"`
}

// ScheduleInput has no status: new meetings always start SCHEDULED.
type ScheduleInput struct {
	Title                 string
	Description           *string
	MeetingType           MeetingType
	StartTime             time.Time
	EndTime               time.Time
	Location              *string
	KeyTopics             []string
	ActionItems           []string
	ParticipantContactIDs []string
}

// MeetingUpdate replaces every mutable field, including the participant set.
type MeetingUpdate struct {
	Title                 string
	Description           *string
	MeetingType           MeetingType
	Status                MeetingStatus
	StartTime             time.Time
	EndTime               time.Time
	Location              *string
	KeyTopics             []string
	ActionItems           []string
	ParticipantContactIDs []string
}

type ReminderInput struct {
	RemindAt time.Time `json:"remindAt"`
	Message  *string   `json:"message"`
}
