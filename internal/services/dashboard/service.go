// Package dashboard computes the daily statistics shown on the landing page.
package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"boothbook/internal/domain"
	"boothbook/internal/filter"
	"boothbook/internal/ports"
)

type Service struct {
	store  ports.SnapshotReader
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.Dashboard = (*Service)(nil)

// New returns an aggregator whose "today" is the calendar day in loc.
func New(store ports.SnapshotReader, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, loc: loc, logger: logger.Named("dashboard"), now: time.Now}
}

// Stats aggregates totals and the meetings of the day containing at. A zero
// at means now. All five values are read from one snapshot of the store.
func (s *Service) Stats(ctx context.Context, at time.Time) (domain.DashboardStats, error) {
	if at.IsZero() {
		at = s.now()
	}
	day := at.In(s.loc)
	today, err := filter.BuildMeetingFilter(filter.MeetingFilter{Date: &day}, s.loc)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	scheduled := today.And(filter.Condition{
		Op:     filter.OpEquals,
		Fields: []filter.Field{filter.MeetingStatus},
		Value:  string(domain.StatusScheduled),
	})

	var stats domain.DashboardStats
	err = s.store.ReadSnapshot(ctx, func(ctx context.Context, r ports.StatsReader) error {
		var err error
		if stats.TotalContacts, err = r.CountContacts(ctx); err != nil {
			return err
		}
		if stats.TotalMeetings, err = r.CountMeetings(ctx, filter.Predicate{}); err != nil {
			return err
		}
		if stats.TotalCompanies, err = r.CountCompanies(ctx); err != nil {
			return err
		}
		if stats.TodaysMeetingsCount, err = r.CountMeetings(ctx, today); err != nil {
			return err
		}
		stats.TodaysScheduledMeetings, err = r.ListMeetings(ctx, scheduled)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to compute dashboard stats", zap.Time("at", at), zap.Error(err))
		return domain.DashboardStats{}, err
	}
	return stats, nil
}
