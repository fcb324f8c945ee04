package postgres

import (
	"fmt"
	"strings"

	"boothbook/internal/filter"
)

// columns whitelists the filter fields against the aliases used in queries:
// co = companies, ct = contacts, m = meetings.
var columns = map[filter.Field]string{
	filter.CompanyName:        "co.name",
	filter.CompanyIndustry:    "co.industry",
	filter.CompanyDescription: "co.description",
	filter.ContactName:        "ct.name",
	filter.ContactEmail:       "ct.email",
	filter.ContactPosition:    "ct.position",
	filter.ContactCompanyID:   "ct.company_id",
	filter.MeetingStartTime:   "m.start_time",
	filter.MeetingStatus:      "m.status",
	filter.MeetingType:        "m.meeting_type",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type sqlFragment struct {
	where string // "" or " WHERE ..."
	order string // "" or " ORDER BY ..."
	args  []any
}

// render turns p into WHERE and ORDER BY clauses. idColumn breaks ordering
// ties so results are deterministic.
func render(p filter.Predicate, idColumn string) (sqlFragment, error) {
	var (
		out   sqlFragment
		parts []string
	)
	arg := func(v any) string {
		out.args = append(out.args, v)
		return fmt.Sprintf("$%d", len(out.args))
	}
	for _, c := range p.Conditions {
		if len(c.Fields) == 0 {
			return sqlFragment{}, fmt.Errorf("condition without fields")
		}
		cols := make([]string, len(c.Fields))
		for i, f := range c.Fields {
			col, ok := columns[f]
			if !ok {
				return sqlFragment{}, fmt.Errorf("field %q is not filterable", f)
			}
			cols[i] = col
		}
		switch c.Op {
		case filter.OpContainsFold:
			ph := arg("%" + likeEscaper.Replace(c.Value) + "%")
			ors := make([]string, len(cols))
			for i, col := range cols {
				ors[i] = fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, col, ph)
			}
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		case filter.OpEquals:
			parts = append(parts, fmt.Sprintf("%s = %s", cols[0], arg(c.Value)))
		case filter.OpTimeRange:
			parts = append(parts, fmt.Sprintf("%s >= %s AND %s < %s", cols[0], arg(c.From), cols[0], arg(c.Before)))
		default:
			return sqlFragment{}, fmt.Errorf("unsupported filter op %d", c.Op)
		}
	}
	if len(parts) > 0 {
		out.where = " WHERE " + strings.Join(parts, " AND ")
	}
	if p.Order.Field != "" {
		col, ok := columns[p.Order.Field]
		if !ok {
			return sqlFragment{}, fmt.Errorf("field %q is not sortable", p.Order.Field)
		}
		dir := "ASC"
		if p.Order.Desc {
			dir = "DESC"
		}
		if p.Order.Field.Temporal() {
			out.order = fmt.Sprintf(" ORDER BY %s %s, %s %s", col, dir, idColumn, dir)
		} else {
			// Case-folded first, then byte order, so results do not depend on the database locale.
			out.order = fmt.Sprintf(` ORDER BY lower(%s) %s, %s COLLATE "C" %s, %s %s`, col, dir, col, dir, idColumn, dir)
		}
	}
	return out, nil
}
