package postgres

import (
	"context"
	"strings"

	"github.com/camguard/camguard"
)

const camServerCols = `cam_server.id, cam_server.name, cam_server.location, cam_server.description, cam_server.connection, COALESCE(cam_server.access_token, ''), cam_server.is_active, cam_server.is_live, cam_server.company_id, cam_server.meta, cam_server.created_at, cam_server.updated_at`

var camServerFields = map[string]string{
	"id":           "cam_server.id",
	"name":         "cam_server.name",
	"location":     "cam_server.location",
	"description":  "cam_server.description",
	"connection":   "cam_server.connection",
	"is_active":    "cam_server.is_active",
	"is_live":      "cam_server.is_live",
	"company_id":   "cam_server.company_id",
	"created_at":   "cam_server.created_at",
	"updated_at":   "cam_server.updated_at",
	"company.name": "company.name",
}

func scanCamServer(sc scanner) (*camguard.CamServer, error) {
	var v camguard.CamServer
	err := sc.Scan(&v.ID, &v.Name, &v.Location, &v.Description, &v.Connection,
		&v.AccessToken, &v.IsActive, &v.IsLive, &v.CompanyID, &v.Meta,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PGStore) CreateCamServer(ctx context.Context, in camguard.CamServerInput, accessToken string) (*camguard.CamServer, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO cam_server (name, location, description, connection, access_token, is_active, is_live, company_id, meta)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING `+camServerCols,
		text(in.Name), text(in.Location), text(in.Description), text(in.Connection),
		accessToken, flag(in.IsActive), flag(in.IsLive), in.CompanyID, jsonArg(in.Meta),
	)
	v, err := scanCamServer(row)
	if err != nil {
		return nil, storeErr("insert cam server", err)
	}
	return v, nil
}

func (s *PGStore) GetCamServer(ctx context.Context, id int64) (*camguard.CamServer, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+camServerCols+` FROM cam_server WHERE id = $1 AND deleted = FALSE`, id)
	v, err := scanCamServer(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get cam server", err)
	}
	return v, nil
}

// GetCamServerByAccessToken resolves a bridge's access token to its server.
func (s *PGStore) GetCamServerByAccessToken(ctx context.Context, token string) (*camguard.CamServer, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+camServerCols+` FROM cam_server WHERE access_token = $1 AND deleted = FALSE`, token)
	v, err := scanCamServer(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get cam server by token", err)
	}
	return v, nil
}

func (s *PGStore) UpdateCamServer(ctx context.Context, id int64, in camguard.CamServerInput) (*camguard.CamServer, error) {
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
	if in.IsActive != nil {
		sets = append(sets, "is_active = "+b.bind(*in.IsActive))
	}
	if in.IsLive != nil {
		sets = append(sets, "is_live = "+b.bind(*in.IsLive))
	}
	if in.CompanyID != nil {
		sets = append(sets, "company_id = "+b.bind(*in.CompanyID))
	}
	if in.Meta != nil {
		sets = append(sets, "meta = "+b.bind(in.Meta))
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.db.QueryRow(ctx,
		`UPDATE cam_server SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+camServerCols,
		b.args...)
	v, err := scanCamServer(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("update cam server", err)
	}
	return v, nil
}

func (s *PGStore) RemoveCamServer(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE cam_server SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return storeErr("remove cam server", err)
	}
	if ct.RowsAffected() == 0 {
		return camguard.ErrNotFound
	}
	return nil
}

func (s *PGStore) ListCamServers(ctx context.Context, q camguard.ListQuery) ([]*camguard.CamServer, error) {
	b := &builder{}
	conds, err := b.where("cam_server", q, camServerFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("cam_server", q, camServerFields)
	if err != nil {
		return nil, err
	}
	join := ""
	if hopUsed(q, "company") {
		join = ` LEFT JOIN company ON company.id = cam_server.company_id`
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+camServerCols+` FROM cam_server`+join+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list cam servers", err)
	}
	defer rows.Close()

	out := []*camguard.CamServer{}
	for rows.Next() {
		v, err := scanCamServer(rows)
		if err != nil {
			return nil, storeErr("scan cam server", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows cam servers", err)
	}
	return out, nil
}
