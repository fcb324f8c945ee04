package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

// bindQuery binds one optional form-style query parameter into dest.
func bindQuery(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return apperrors.Validation("invalid query parameter %s: %v", name, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Companies

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	var search *string
	if err := bindQuery(r, "search", &search); err != nil {
		s.fail(w, r, "Failed to fetch companies", err)
		return
	}
	out, err := s.companies.List(r.Context(), filter.CompanyFilter{Search: deref(search)})
	if err != nil {
		s.fail(w, r, "Failed to fetch companies", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var in domain.CompanyInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, "Failed to create company", err)
		return
	}
	c, err := s.companies.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, "Failed to create company", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	c, err := s.companies.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "Failed to fetch company", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) {
	var in domain.CompanyInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, "Failed to update company", err)
		return
	}
	c, err := s.companies.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, "Failed to update company", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := s.companies.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "Failed to delete company", err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Company deleted successfully"})
}

// Contacts

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	var search, companyID *string
	if err := bindQuery(r, "search", &search); err != nil {
		s.fail(w, r, "Failed to fetch contacts", err)
		return
	}
	if err := bindQuery(r, "companyId", &companyID); err != nil {
		s.fail(w, r, "Failed to fetch contacts", err)
		return
	}
	out, err := s.contacts.List(r.Context(), filter.ContactFilter{Search: deref(search), CompanyID: deref(companyID)})
	if err != nil {
		s.fail(w, r, "Failed to fetch contacts", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createContact(w http.ResponseWriter, r *http.Request) {
	var in domain.ContactInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, "Failed to create contact", err)
		return
	}
	c, err := s.contacts.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, "Failed to create contact", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "Failed to fetch contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	var in domain.ContactInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, "Failed to update contact", err)
		return
	}
	c, err := s.contacts.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, "Failed to update contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "Failed to delete contact", err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Contact deleted successfully"})
}

// Meetings

type meetingRequest struct {
	Title        string               `json:"title"`
	Description  *string              `json:"description"`
	MeetingType  domain.MeetingType   `json:"meetingType"`
	Status       domain.MeetingStatus `json:"status"`
	StartTime    time.Time            `json:"startTime"`
	EndTime      time.Time            `json:"endTime"`
	Location     *string              `json:"location"`
	KeyTopics    []string             `json:"keyTopics"`
	ActionItems  []string             `json:"actionItems"`
	Participants []participantRef     `json:"participants"`
}

type participantRef struct {
	ContactID string `json:"contactId"`
}

func (m meetingRequest) contactIDs() []string {
	ids := make([]string, len(m.Participants))
	for i, p := range m.Participants {
		ids[i] = p.ContactID
	}
	return ids
}

func (s *Server) listMeetings(w http.ResponseWriter, r *http.Request) {
	var (
		date         *openapi_types.Date
		status, kind *string
	)
	for name, dest := range map[string]any{"date": &date, "status": &status, "type": &kind} {
		if err := bindQuery(r, name, dest); err != nil {
			s.fail(w, r, "Failed to fetch meetings", err)
			return
		}
	}
	f := filter.MeetingFilter{
		Status: domain.MeetingStatus(deref(status)),
		Type:   domain.MeetingType(deref(kind)),
	}
	if date != nil {
		f.Date = &date.Time
	}
	out, err := s.meetings.List(r.Context(), f)
	if err != nil {
		s.fail(w, r, "Failed to fetch meetings", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// scheduleMeeting ignores any status in the body; new meetings are SCHEDULED.
func (s *Server) scheduleMeeting(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, "Failed to create meeting", err)
		return
	}
	m, err := s.meetings.Schedule(r.Context(), domain.ScheduleInput{
		Title:                 req.Title,
		Description:           req.Description,
		MeetingType:           req.MeetingType,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		Location:              req.Location,
		KeyTopics:             req.KeyTopics,
		ActionItems:           req.ActionItems,
		ParticipantContactIDs: req.contactIDs(),
	})
	if err != nil {
		s.fail(w, r, "Failed to create meeting", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) getMeeting(w http.ResponseWriter, r *http.Request) {
	m, err := s.meetings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "Failed to fetch meeting", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) updateMeeting(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, "Failed to update meeting", err)
		return
	}
	m, err := s.meetings.Update(r.Context(), chi.URLParam(r, "id"), domain.MeetingUpdate{
		Title:                 req.Title,
		Description:           req.Description,
		MeetingType:           req.MeetingType,
		Status:                req.Status,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		Location:              req.Location,
		KeyTopics:             req.KeyTopics,
		ActionItems:           req.ActionItems,
		ParticipantContactIDs: req.contactIDs(),
	})
	if err != nil {
		s.fail(w, r, "Failed to update meeting", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMeeting(w http.ResponseWriter, r *http.Request) {
	if err := s.meetings.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "Failed to delete meeting", err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Meeting deleted successfully"})
}

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	out, err := s.reminders.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "Failed to fetch reminders", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createReminder(w http.ResponseWriter, r *http.Request) {
	var in domain.ReminderInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, "Failed to create reminder", err)
		return
	}
	rem, err := s.reminders.Create(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, "Failed to create reminder", err)
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

// Dashboard

// getDashboard serves GET /api/dashboard?at=<RFC 3339 instant>. A positive
// offset must be sent percent-encoded (%2B05:00); a raw "+" arrives as a space
// and is rejected.
func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	var at *time.Time
	if err := bindQuery(r, "at", &at); err != nil {
		s.fail(w, r, "Failed to fetch dashboard stats", err)
		return
	}
	var ref time.Time
	if at != nil {
		ref = *at
	}
	stats, err := s.dashboard.Stats(r.Context(), ref)
	if err != nil {
		s.fail(w, r, "Failed to fetch dashboard stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
