// Package filter turns the typed list filters into a Predicate: a conjunction of
// conditions plus an ordering. Repositories either evaluate a Predicate in memory
// (Match, Less) or render it to SQL against a fixed column whitelist.
package filter

import (
	"strings"
	"time"
)

// Field names an attribute a predicate may test or sort on.
type Field string

const (
	CompanyName        Field = "company.name"
	CompanyIndustry    Field = "company.industry"
	CompanyDescription Field = "company.description"

	ContactName      Field = "contact.name"
	ContactEmail     Field = "contact.email"
	ContactPosition  Field = "contact.position"
	ContactCompanyID Field = "contact.company_id"

	MeetingStartTime Field = "meeting.start_time"
	MeetingStatus    Field = "meeting.status"
	MeetingType      Field = "meeting.meeting_type"
)

// Temporal reports whether f holds a timestamp rather than text.
func (f Field) Temporal() bool { return f == MeetingStartTime }

type Op int

const (
	// OpContainsFold matches when any of Fields contains Value, ignoring case.
	OpContainsFold Op = iota + 1
	// OpEquals matches when Fields[0] equals Value exactly.
	OpEquals
	// OpTimeRange matches when From <= Fields[0] < Before.
	OpTimeRange
)

type Condition struct {
	Op     Op
	Fields []Field
	Value  string
	From   time.Time
	Before time.Time
}

type Order struct {
	Field Field
	Desc  bool
}

// Predicate is the conjunction of Conditions. The zero Predicate matches everything.
type Predicate struct {
	Conditions []Condition
	Order      Order
}

// Record is implemented by anything a Predicate can be evaluated against.
// Absent values report ok=false.
type Record interface {
	Text(f Field) (string, bool)
	Time(f Field) (time.Time, bool)
}

// Match reports whether r satisfies every condition.
func (p Predicate) Match(r Record) bool {
	for _, c := range p.Conditions {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

func (c Condition) Match(r Record) bool {
	switch c.Op {
	case OpContainsFold:
		needle := strings.ToLower(c.Value)
		for _, f := range c.Fields {
			if v, ok := r.Text(f); ok && strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	case OpEquals:
		v, ok := r.Text(c.Fields[0])
		return ok && v == c.Value
	case OpTimeRange:
		t, ok := r.Time(c.Fields[0])
		return ok && !t.Before(c.From) && t.Before(c.Before)
	}
	return false
}

// Less orders a before b according to p.Order. Records without the order
// field sort last.
func (p Predicate) Less(a, b Record) bool {
	if p.Order.Field == "" {
		return false
	}
	if ta, ok := a.Time(p.Order.Field); ok {
		tb, ok := b.Time(p.Order.Field)
		if !ok {
			return true
		}
		if p.Order.Desc {
			return ta.After(tb)
		}
		return ta.Before(tb)
	}
	sa, okA := a.Text(p.Order.Field)
	sb, okB := b.Text(p.Order.Field)
	switch {
	case !okA:
		return false
	case !okB:
		return true
	}
	if p.Order.Desc {
		return textLess(sb, sa)
	}
	return textLess(sa, sb)
}

// textLess compares case-folded values, then raw bytes on a fold tie.
func textLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// And returns a copy of p with c appended.
func (p Predicate) And(c Condition) Predicate {
	out := Predicate{Order: p.Order, Conditions: make([]Condition, 0, len(p.Conditions)+1)}
	out.Conditions = append(out.Conditions, p.Conditions...)
	out.Conditions = append(out.Conditions, c)
	return out
}
