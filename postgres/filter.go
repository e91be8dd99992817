package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/camguard/camguard"
)

// builder accumulates positional arguments for one statement.
type builder struct {
	args []any
}

// bind registers a value and returns its placeholder.
func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where compiles the query's filters against the allowed column set into SQL
// conditions. cols maps camguard.FieldRef keys ("name", "camera.cam_server_id")
// to SQL expressions; a field outside the set is rejected instead of being
// interpolated. The soft-delete predicate on the base table is always applied
// unless the query opts into deleted rows.
func (b *builder) where(table string, q camguard.ListQuery, cols map[string]string) ([]string, error) {
	var conds []string
	if !q.IncludeDeleted {
		conds = append(conds, table+".deleted = FALSE")
	}
	for _, f := range q.Filters {
		col, ok := cols[f.Field.Key()]
		if !ok {
			return nil, fmt.Errorf("postgres: filter field %q not allowed", f.Field.Key())
		}
		cond, err := b.condition(col, f)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	if q.UpdatedBefore != nil {
		conds = append(conds, table+".updated_at <= "+b.bind(*q.UpdatedBefore))
	}
	if q.UpdatedAfter != nil {
		conds = append(conds, table+".updated_at > "+b.bind(*q.UpdatedAfter))
	}
	return conds, nil
}

// condition is the operator dispatch table.
func (b *builder) condition(col string, f camguard.Filter) (string, error) {
	switch f.Op {
	case camguard.OpEq:
		return col + " = " + b.bind(f.Value), nil
	case camguard.OpNe:
		return col + " <> " + b.bind(f.Value), nil
	case camguard.OpGt:
		return col + " > " + b.bind(f.Value), nil
	case camguard.OpGe:
		return col + " >= " + b.bind(f.Value), nil
	case camguard.OpLt:
		return col + " < " + b.bind(f.Value), nil
	case camguard.OpLe:
		return col + " <= " + b.bind(f.Value), nil
	case camguard.OpLike:
		return col + " ILIKE " + b.bind("%"+fmt.Sprint(f.Value)+"%"), nil
	case camguard.OpIn:
		return col + " = ANY(" + b.bind(f.Value) + ")", nil
	case camguard.OpIsNull:
		return col + " IS NULL", nil
	case camguard.OpNotNull:
		return col + " IS NOT NULL", nil
	case camguard.OpContains:
		return col + " @> " + b.bind(f.Value), nil
	}
	return "", fmt.Errorf("postgres: operator %d not valid", f.Op)
}

// orderBy compiles order expressions against the allowed column set.
// Defaults to newest-id-first, the listing order of every collection
// endpoint.
func orderBy(table string, q camguard.ListQuery, cols map[string]string) (string, error) {
	if len(q.OrderBy) == 0 {
		return " ORDER BY " + table + ".id DESC", nil
	}
	parts := make([]string, 0, len(q.OrderBy))
	for _, o := range q.OrderBy {
		col, ok := cols[o.Field.Key()]
		if !ok {
			return "", fmt.Errorf("postgres: order field %q not allowed", o.Field.Key())
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		parts = append(parts, col+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

const defaultLimit = 10

// limitOffset compiles paging. A zero limit falls back to the default page
// size; a negative limit means unbounded (used by the feed's full pulls).
func limitOffset(q camguard.ListQuery) string {
	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	out := ""
	if limit > 0 {
		out += " LIMIT " + strconv.Itoa(limit)
	}
	if q.Offset > 0 {
		out += " OFFSET " + strconv.Itoa(q.Offset)
	}
	return out
}

// hopUsed reports whether any filter or order crosses the given relationship
// hop, so list methods know to add the matching join.
func hopUsed(q camguard.ListQuery, via string) bool {
	for _, f := range q.Filters {
		if f.Field.Via == via {
			return true
		}
	}
	for _, o := range q.OrderBy {
		if o.Field.Via == via {
			return true
		}
	}
	return false
}

func whereSQL(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
