package filter

import (
	"strings"
	"time"

	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
)

type CompanyFilter struct {
	Search string
}

type ContactFilter struct {
	Search    string
	CompanyID string
}

// MeetingFilter restricts meetings by calendar day, status and type. Only the
// year, month and day of Date are used; its clock and zone are ignored.
type MeetingFilter struct {
	Date   *time.Time
	Status domain.MeetingStatus
	Type   domain.MeetingType
}

// BuildCompanyFilter matches companies whose name, industry or description
// contains the search term, ordered by name. A blank term matches all.
func BuildCompanyFilter(f CompanyFilter) Predicate {
	p := Predicate{Order: Order{Field: CompanyName}}
	if term := strings.TrimSpace(f.Search); term != "" {
		p.Conditions = append(p.Conditions, Condition{
			Op:     OpContainsFold,
			Fields: []Field{CompanyName, CompanyIndustry, CompanyDescription},
			Value:  term,
		})
	}
	return p
}

func BuildContactFilter(f ContactFilter) Predicate {
	p := Predicate{Order: Order{Field: ContactName}}
	if term := strings.TrimSpace(f.Search); term != "" {
		p.Conditions = append(p.Conditions, Condition{
			Op:     OpContainsFold,
			Fields: []Field{ContactName, ContactEmail, ContactPosition},
			Value:  term,
		})
	}
	if id := strings.TrimSpace(f.CompanyID); id != "" {
		p.Conditions = append(p.Conditions, Condition{Op: OpEquals, Fields: []Field{ContactCompanyID}, Value: id})
	}
	return p
}

// BuildMeetingFilter ANDs the supplied dimensions together, ordered by start
// time. The day window is computed in loc.
func BuildMeetingFilter(f MeetingFilter, loc *time.Location) (Predicate, error) {
	p := Predicate{Order: Order{Field: MeetingStartTime}}
	if f.Date != nil {
		from := startOfDay(f.Date.Year(), f.Date.Month(), f.Date.Day(), loc)
		p.Conditions = append(p.Conditions, Condition{
			Op:     OpTimeRange,
			Fields: []Field{MeetingStartTime},
			From:   from,
			Before: from.AddDate(0, 0, 1),
		})
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return Predicate{}, apperrors.Validation("unknown meeting status %q", f.Status)
		}
		p.Conditions = append(p.Conditions, Condition{Op: OpEquals, Fields: []Field{MeetingStatus}, Value: string(f.Status)})
	}
	if f.Type != "" {
		if !f.Type.Valid() {
			return Predicate{}, apperrors.Validation("unknown meeting type %q", f.Type)
		}
		p.Conditions = append(p.Conditions, Condition{Op: OpEquals, Fields: []Field{MeetingType}, Value: string(f.Type)})
	}
	return p, nil
}

// DayWindow returns the half-open [start, end) interval of the calendar day
// that contains instant t in loc. end is one calendar day later, which is not
// always 24h across a DST change.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	start := startOfDay(lt.Year(), lt.Month(), lt.Day(), loc)
	return start, start.AddDate(0, 0, 1)
}

func startOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
