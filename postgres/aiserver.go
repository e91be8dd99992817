package postgres

import (
	"context"
	"strings"

	"github.com/camguard/camguard"
)

const aiServerCols = `ai_server.id, ai_server.name, ai_server.location, ai_server.description, ai_server.connection, ai_server.vertex_types, ai_server.is_active, ai_server.is_live, ai_server.company_id, ai_server.created_at, ai_server.updated_at`

var aiServerFields = map[string]string{
	"id":           "ai_server.id",
	"name":         "ai_server.name",
	"location":     "ai_server.location",
	"description":  "ai_server.description",
	"is_active":    "ai_server.is_active",
	"is_live":      "ai_server.is_live",
	"company_id":   "ai_server.company_id",
	"vertex_types": "ai_server.vertex_types",
	"created_at":   "ai_server.created_at",
	"updated_at":   "ai_server.updated_at",
	"company.name": "company.name",
}

func scanAIServer(sc scanner) (*camguard.AIServer, error) {
	var v camguard.AIServer
	err := sc.Scan(&v.ID, &v.Name, &v.Location, &v.Description, &v.Connection,
		&v.VertexTypes, &v.IsActive, &v.IsLive, &v.CompanyID,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PGStore) CreateAIServer(ctx context.Context, in camguard.AIServerInput) (*camguard.AIServer, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO ai_server (name, location, description, connection, vertex_types, is_active, is_live, company_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+aiServerCols,
		text(in.Name), text(in.Location), text(in.Description), text(in.Connection),
		intsArg(in.VertexTypes), flag(in.IsActive), flag(in.IsLive), in.CompanyID,
	)
	v, err := scanAIServer(row)
	if err != nil {
		return nil, storeErr("insert ai server", err)
	}
	return v, nil
}

func (s *PGStore) GetAIServer(ctx context.Context, id int64) (*camguard.AIServer, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+aiServerCols+` FROM ai_server WHERE id = $1 AND deleted = FALSE`, id)
	v, err := scanAIServer(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get ai server", err)
	}
	return v, nil
}

func (s *PGStore) UpdateAIServer(ctx context.Context, id int64, in camguard.AIServerInput) (*camguard.AIServer, error) {
	b := &builder{}
	var sets []string
	if in.Name != nil {
		sets = append(sets, "name = "+b.bind(*in.Name))
	}
	if in.Location != nil {
		sets = append(sets, "location = "+b.bind(*in.Location))
	}
	if in.Description != nil {
		sets = append(sets, "description = "+b.bind(*in.Description))
	}
	if in.Connection != nil {
		sets = append(sets, "connection = "+b.bind(*in.Connection))
	}
	if in.VertexTypes != nil {
		sets = append(sets, "vertex_types = "+b.bind(in.VertexTypes))
	}
	if in.IsActive != nil {
		sets = append(sets, "is_active = "+b.bind(*in.IsActive))
	}
	if in.IsLive != nil {
		sets = append(sets, "is_live = "+b.bind(*in.IsLive))
	}
	if in.CompanyID != nil {
		sets = append(sets, "company_id = "+b.bind(*in.CompanyID))
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.db.QueryRow(ctx,
		`UPDATE ai_server SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+aiServerCols,
		b.args...)
	v, err := scanAIServer(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("update ai server", err)
	}
	return v, nil
}

func (s *PGStore) RemoveAIServer(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE ai_server SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return storeErr("remove ai server", err)
	}
	if ct.RowsAffected() == 0 {
		return camguard.ErrNotFound
	}
	return nil
}

func (s *PGStore) ListAIServers(ctx context.Context, q camguard.ListQuery) ([]*camguard.AIServer, error) {
	b := &builder{}
	conds, err := b.where("ai_server", q, aiServerFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("ai_server", q, aiServerFields)
	if err != nil {
		return nil, err
	}
	join := ""
	if hopUsed(q, "company") {
		join = ` LEFT JOIN company ON company.id = ai_server.company_id`
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+aiServerCols+` FROM ai_server`+join+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list ai servers", err)
	}
	defer rows.Close()

	out := []*camguard.AIServer{}
	for rows.Next() {
		v, err := scanAIServer(rows)
		if err != nil {
			return nil, storeErr("scan ai server", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows ai servers", err)
	}
	return out, nil
}
