package postgres

import (
	"context"
	"strings"

	"github.com/camguard/camguard"
)

const aiTypeCols = `ai_type.id, ai_type.index, ai_type.severity, ai_type.name, ai_type.description, ai_type.created_at, ai_type.updated_at`

var aiTypeFields = map[string]string{
	"id":          "ai_type.id",
	"index":       "ai_type.index",
	"severity":    "ai_type.severity",
	"name":        "ai_type.name",
	"description": "ai_type.description",
	"created_at":  "ai_type.created_at",
	"updated_at":  "ai_type.updated_at",
}

func scanAIType(sc scanner) (*camguard.AIType, error) {
	var v camguard.AIType
	err := sc.Scan(&v.ID, &v.Index, &v.Severity, &v.Name, &v.Description,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PGStore) CreateAIType(ctx context.Context, in camguard.AITypeInput) (*camguard.AIType, error) {
	if in.Index == nil {
		return nil, &camguard.ValidationError{Index: 0, Field: "index", Reason: "required"}
	}
	severity := int64(50)
	if in.Severity != nil {
		severity = *in.Severity
	}
	row := s.db.QueryRow(ctx,
		`INSERT INTO ai_type (index, severity, name, description)
		 VALUES ($1, $2, $3, $4) RETURNING `+aiTypeCols,
		*in.Index, severity, text(in.Name), text(in.Description),
	)
	v, err := scanAIType(row)
	if err != nil {
		return nil, storeErr("insert ai type", err)
	}
	return v, nil
}

func (s *PGStore) GetAIType(ctx context.Context, id int64) (*camguard.AIType, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+aiTypeCols+` FROM ai_type WHERE id = $1 AND deleted = FALSE`, id)
	v, err := scanAIType(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get ai type", err)
	}
	return v, nil
}

func (s *PGStore) UpdateAIType(ctx context.Context, id int64, in camguard.AITypeInput) (*camguard.AIType, error) {
	b := &builder{}
	var sets []string
	if in.Index != nil {
		sets = append(sets, "index = "+b.bind(*in.Index))
	}
	if in.Severity != nil {
		sets = append(sets, "severity = "+b.bind(*in.Severity))
	}
	if in.Name != nil {
		sets = append(sets, "name = "+b.bind(*in.Name))
	}
	if in.Description != nil {
		sets = append(sets, "description = "+b.bind(*in.Description))
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.db.QueryRow(ctx,
		`UPDATE ai_type SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+aiTypeCols,
		b.args...)
	v, err := scanAIType(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("update ai type", err)
	}
	return v, nil
}

func (s *PGStore) RemoveAIType(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE ai_type SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return storeErr("remove ai type", err)
	}
	if ct.RowsAffected() == 0 {
		return camguard.ErrNotFound
	}
	return nil
}

func (s *PGStore) ListAITypes(ctx context.Context, q camguard.ListQuery) ([]*camguard.AIType, error) {
	b := &builder{}
	conds, err := b.where("ai_type", q, aiTypeFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("ai_type", q, aiTypeFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+aiTypeCols+` FROM ai_type`+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list ai types", err)
	}
	defer rows.Close()

	out := []*camguard.AIType{}
	for rows.Next() {
		v, err := scanAIType(rows)
		if err != nil {
			return nil, storeErr("scan ai type", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows ai types", err)
	}
	return out, nil
}
