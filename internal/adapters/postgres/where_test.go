package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

func TestRender_CompanySearch(t *testing.T) {
	q, err := render(filter.BuildCompanyFilter(filter.CompanyFilter{Search: "50%_off"}), "co.id")
	require.NoError(t, err)
	assert.Equal(t,
		` WHERE (co.name ILIKE $1 ESCAPE '\' OR co.industry ILIKE $1 ESCAPE '\' OR co.description ILIKE $1 ESCAPE '\')`,
		q.where)
	assert.Equal(t, ` ORDER BY lower(co.name) ASC, co.name COLLATE "C" ASC, co.id ASC`, q.order)
	assert.Equal(t, []any{`%50\%\_off%`}, q.args)
}

func TestRender_NoConditions(t *testing.T) {
	q, err := render(filter.BuildCompanyFilter(filter.CompanyFilter{}), "co.id")
	require.NoError(t, err)
	assert.Empty(t, q.where)
	assert.Empty(t, q.args)
}

func TestRender_MeetingFilter(t *testing.T) {
	lima := time.FixedZone("PET", -5*60*60)
	day := time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC)
	p, err := filter.BuildMeetingFilter(filter.MeetingFilter{
		Date:   &day,
		Status: domain.StatusScheduled,
		Type:   domain.MeetingTypeLunch,
	}, lima)
	require.NoError(t, err)

	q, err := render(p, "m.id")
	require.NoError(t, err)
	assert.Equal(t, " WHERE m.start_time >= $1 AND m.start_time < $2 AND m.status = $3 AND m.meeting_type = $4", q.where)
	assert.Equal(t, " ORDER BY m.start_time ASC, m.id ASC", q.order)
	require.Len(t, q.args, 4)
	assert.True(t, q.args[0].(time.Time).Equal(time.Date(2025, 9, 22, 5, 0, 0, 0, time.UTC)))
	assert.True(t, q.args[1].(time.Time).Equal(time.Date(2025, 9, 23, 5, 0, 0, 0, time.UTC)))
	assert.Equal(t, "SCHEDULED", q.args[2])
	assert.Equal(t, "LUNCH", q.args[3])
}

func TestRender_RejectsUnknownField(t *testing.T) {
	_, err := render(filter.Predicate{Conditions: []filter.Condition{
		{Op: filter.OpEquals, Fields: []filter.Field{"password"}, Value: "x"},
	}}, "ct.id")
	assert.Error(t, err)

	_, err = render(filter.Predicate{Order: filter.Order{Field: "1; DROP TABLE contacts"}}, "ct.id")
	assert.Error(t, err)
}
