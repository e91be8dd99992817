package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camguard/camguard"
)

var testFields = map[string]string{
	"id":                   "camera.id",
	"name":                 "camera.name",
	"is_live":              "camera.is_live",
	"type":                 "incident.type",
	"cam_server.company_id": "cam_server.company_id",
}

func TestWhereDefaults(t *testing.T) {
	b := &builder{}
	conds, err := b.where("camera", camguard.ListQuery{}, testFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"camera.deleted = FALSE"}, conds)
	assert.Empty(t, b.args)
}

func TestWhereIncludeDeleted(t *testing.T) {
	b := &builder{}
	conds, err := b.where("camera", camguard.ListQuery{IncludeDeleted: true}, testFields)
	require.NoError(t, err)
	assert.Empty(t, conds)
}

func TestWhereFilters(t *testing.T) {
	b := &builder{}
	q := camguard.ListQuery{
		Filters: []camguard.Filter{
			{Field: camguard.FieldRef{Name: "name"}, Op: camguard.OpLike, Value: "gate"},
			{Field: camguard.FieldRef{Name: "is_live"}, Op: camguard.OpEq, Value: true},
			{Field: camguard.FieldRef{Name: "company_id", Via: "cam_server"}, Op: camguard.OpEq, Value: int64(7)},
		},
	}
	conds, err := b.where("camera", q, testFields)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"camera.deleted = FALSE",
		"camera.name ILIKE $1",
		"camera.is_live = $2",
		"cam_server.company_id = $3",
	}, conds)
	assert.Equal(t, []any{"%gate%", true, int64(7)}, b.args)
}

func TestWhereRejectsUnknownField(t *testing.T) {
	b := &builder{}
	q := camguard.ListQuery{
		Filters: []camguard.Filter{
			{Field: camguard.FieldRef{Name: "deleted; DROP TABLE camera"}, Op: camguard.OpEq, Value: 1},
		},
	}
	_, err := b.where("camera", q, testFields)
	assert.Error(t, err)
}

func TestWhereCursorBounds(t *testing.T) {
	before := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	after := before.Add(-time.Hour)
	b := &builder{}
	conds, err := b.where("camera", camguard.ListQuery{
		UpdatedBefore: &before,
		UpdatedAfter:  &after,
	}, testFields)
	require.NoError(t, err)
	assert.Contains(t, conds, "camera.updated_at <= $1")
	assert.Contains(t, conds, "camera.updated_at > $2")
	assert.Equal(t, []any{before, after}, b.args)
}

func TestConditionOperators(t *testing.T) {
	tests := []struct {
		op   camguard.Op
		val  any
		want string
	}{
		{camguard.OpEq, 1, "camera.id = $1"},
		{camguard.OpNe, 1, "camera.id <> $1"},
		{camguard.OpGt, 1, "camera.id > $1"},
		{camguard.OpGe, 1, "camera.id >= $1"},
		{camguard.OpLt, 1, "camera.id < $1"},
		{camguard.OpLe, 1, "camera.id <= $1"},
		{camguard.OpIn, []int64{1, 2}, "camera.id = ANY($1)"},
		{camguard.OpIsNull, nil, "camera.id IS NULL"},
		{camguard.OpNotNull, nil, "camera.id IS NOT NULL"},
	}
	for _, tt := range tests {
		b := &builder{}
		got, err := b.condition("camera.id", camguard.Filter{Op: tt.op, Value: tt.val})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestConditionContains(t *testing.T) {
	b := &builder{}
	got, err := b.condition("incident.type", camguard.Filter{
		Op: camguard.OpContains, Value: []int64{7},
	})
	require.NoError(t, err)
	assert.Equal(t, "incident.type @> $1", got)
	assert.Equal(t, []any{[]int64{7}}, b.args)
}

func TestConditionUnknownOp(t *testing.T) {
	b := &builder{}
	_, err := b.condition("camera.id", camguard.Filter{Op: camguard.Op(99)})
	assert.Error(t, err)
}

func TestOrderBy(t *testing.T) {
	got, err := orderBy("camera", camguard.ListQuery{}, testFields)
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY camera.id DESC", got)

	got, err = orderBy("camera", camguard.ListQuery{
		OrderBy: []camguard.Order{
			{Field: camguard.FieldRef{Name: "name"}},
			{Field: camguard.FieldRef{Name: "id"}, Desc: true},
		},
	}, testFields)
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY camera.name ASC, camera.id DESC", got)

	_, err = orderBy("camera", camguard.ListQuery{
		OrderBy: []camguard.Order{{Field: camguard.FieldRef{Name: "nope"}}},
	}, testFields)
	assert.Error(t, err)
}

func TestLimitOffset(t *testing.T) {
	assert.Equal(t, " LIMIT 10", limitOffset(camguard.ListQuery{}))
	assert.Equal(t, " LIMIT 25 OFFSET 50", limitOffset(camguard.ListQuery{Limit: 25, Offset: 50}))
	// Negative limit means unbounded, used by the feed's full pulls.
	assert.Equal(t, "", limitOffset(camguard.ListQuery{Limit: -1}))
	assert.Equal(t, " OFFSET 5", limitOffset(camguard.ListQuery{Limit: -1, Offset: 5}))
}

func TestHopUsed(t *testing.T) {
	q := camguard.ListQuery{
		Filters: []camguard.Filter{
			{Field: camguard.FieldRef{Name: "company_id", Via: "cam_server"}, Op: camguard.OpEq, Value: 1},
		},
	}
	assert.True(t, hopUsed(q, "cam_server"))
	assert.False(t, hopUsed(q, "company"))

	q = camguard.ListQuery{
		OrderBy: []camguard.Order{{Field: camguard.FieldRef{Name: "name", Via: "company"}}},
	}
	assert.True(t, hopUsed(q, "company"))
}

func TestWhereSQL(t *testing.T) {
	assert.Equal(t, "", whereSQL(nil))
	assert.Equal(t, " WHERE a AND b", whereSQL([]string{"a", "b"}))
}
