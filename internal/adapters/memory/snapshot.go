package memory

import (
	"context"

	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

// snapshot reads under the read lock already held by ReadSnapshot.
type snapshot struct{ s *Store }

func (v snapshot) CountCompanies(context.Context) (int, error) { return len(v.s.companies), nil }
func (v snapshot) CountContacts(context.Context) (int, error)  { return len(v.s.contacts), nil }

func (v snapshot) CountMeetings(_ context.Context, p filter.Predicate) (int, error) {
	return v.s.countMeetings(p), nil
}

func (v snapshot) ListMeetings(_ context.Context, p filter.Predicate) ([]domain.Meeting, error) {
	return v.s.listMeetings(p, false)
}
