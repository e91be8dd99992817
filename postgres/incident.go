package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/camguard/camguard"
)

const incidentCols = `incident.id, incident.uuid, incident.type, incident.ai_mapping_id, incident.camera_id, incident.location, incident.acknowledged, incident.inaccurate, incident.meta, incident.extra, incident.count, incident.frame, incident.video, incident.people, incident.objects, incident.created_at, incident.updated_at`

var incidentFields = map[string]string{
	"id":            "incident.id",
	"uuid":          "incident.uuid",
	"type":          "incident.type",
	"ai_mapping_id": "incident.ai_mapping_id",
	"camera_id":     "incident.camera_id",
	"location":      "incident.location",
	"acknowledged":  "incident.acknowledged",
	"inaccurate":    "incident.inaccurate",
	"count":         "incident.count",
	"people":        "incident.people",
	"objects":       "incident.objects",
	"created_at":    "incident.created_at",
	"updated_at":    "incident.updated_at",
	"camera.name":   "camera.name",
	"camera.cam_server_id": "camera.cam_server_id",
}

func scanIncident(sc scanner) (*camguard.Incident, error) {
	var v camguard.Incident
	err := sc.Scan(&v.ID, &v.UUID, &v.Type, &v.AIMappingID, &v.CameraID,
		&v.Location, &v.Acknowledged, &v.Inaccurate, &v.Meta, &v.Extra,
		&v.Count, &v.Frame, &v.Video, &v.People, &v.Objects,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateIncident stores a bridge's detection report. The camera id and
// location are resolved from the mapping by the caller and denormalized here
// so reads never need the mapping row.
func (s *PGStore) CreateIncident(ctx context.Context, in camguard.IncidentInput, cameraID int64, location string) (*camguard.Incident, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO incident (uuid, type, ai_mapping_id, camera_id, location, meta, extra, count, frame, video, people, objects)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING `+incidentCols,
		uuid.NewString(), intsArg(in.Type), in.AIMappingID, cameraID, location,
		jsonArg(in.Meta), jsonArg(in.Extra), in.Count, in.Frame, in.Video,
		in.People, in.Objects,
	)
	v, err := scanIncident(row)
	if err != nil {
		return nil, storeErr("insert incident", err)
	}
	return v, nil
}

func (s *PGStore) GetIncident(ctx context.Context, id int64) (*camguard.Incident, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+incidentCols+` FROM incident WHERE id = $1 AND deleted = FALSE`, id)
	v, err := scanIncident(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get incident", err)
	}
	return v, nil
}

func (s *PGStore) UpdateIncidentMeta(ctx context.Context, id int64, meta []byte) (*camguard.Incident, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE incident SET meta = $1, updated_at = NOW() WHERE id = $2 AND deleted = FALSE RETURNING `+incidentCols,
		jsonArg(meta), id)
	v, err := scanIncident(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("update incident meta", err)
	}
	return v, nil
}

func (s *PGStore) SetIncidentFlags(ctx context.Context, id int64, acknowledged *time.Time, inaccurate bool) (*camguard.Incident, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE incident SET acknowledged = $1, inaccurate = $2, updated_at = NOW()
		 WHERE id = $3 AND deleted = FALSE RETURNING `+incidentCols,
		acknowledged, inaccurate, id)
	v, err := scanIncident(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("set incident flags", err)
	}
	return v, nil
}

// MarkIncident records an operator's verdict. Only the supplied fields change,
// and the operator's identity is merged into meta next to each one.
func (s *PGStore) MarkIncident(ctx context.Context, id int64, acknowledged *time.Time, inaccurate *bool, byUser string) (*camguard.Incident, error) {
	b := &builder{}
	var sets []string
	patch := map[string]string{}
	if acknowledged != nil {
		sets = append(sets, "acknowledged = "+b.bind(*acknowledged))
		patch["acknowledged_by"] = byUser
	}
	if inaccurate != nil {
		sets = append(sets, "inaccurate = "+b.bind(*inaccurate))
		patch["inaccurate_by"] = byUser
	}
	if len(patch) > 0 && byUser != "" {
		raw, err := json.Marshal(patch)
		if err != nil {
			return nil, storeErr("mark incident", err)
		}
		sets = append(sets, "meta = COALESCE(meta, '{}'::jsonb) || "+b.bind(raw)+"::jsonb")
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.db.QueryRow(ctx,
		`UPDATE incident SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+incidentCols,
		b.args...)
	v, err := scanIncident(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("mark incident", err)
	}
	return v, nil
}

func (s *PGStore) RemoveIncident(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE incident SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return storeErr("remove incident", err)
	}
	if ct.RowsAffected() == 0 {
		return camguard.ErrNotFound
	}
	return nil
}

func (s *PGStore) ListIncidents(ctx context.Context, q camguard.ListQuery) ([]*camguard.Incident, error) {
	b := &builder{}
	conds, err := b.where("incident", q, incidentFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("incident", q, incidentFields)
	if err != nil {
		return nil, err
	}
	join := ""
	if hopUsed(q, "camera") {
		join = ` LEFT JOIN camera ON camera.id = incident.camera_id`
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+incidentCols+` FROM incident`+join+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list incidents", err)
	}
	defer rows.Close()
	return collectIncidents(rows)
}

// ListIncidentsByCompany scopes incidents to a company through the camera's
// server, for non-superuser dashboard reads.
func (s *PGStore) ListIncidentsByCompany(ctx context.Context, companyID int64, q camguard.ListQuery) ([]*camguard.Incident, error) {
	b := &builder{}
	conds := []string{"cam_server.company_id = " + b.bind(companyID)}
	more, err := b.where("incident", q, incidentFields)
	if err != nil {
		return nil, err
	}
	conds = append(conds, more...)
	order, err := orderBy("incident", q, incidentFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+incidentCols+` FROM incident
		 JOIN camera ON camera.id = incident.camera_id
		 JOIN cam_server ON cam_server.id = camera.cam_server_id`+
			whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list incidents by company", err)
	}
	defer rows.Close()
	return collectIncidents(rows)
}

// ListIncidentsByServer backs the bridge view and the incident feed stream.
func (s *PGStore) ListIncidentsByServer(ctx context.Context, camServerID int64, q camguard.ListQuery) ([]*camguard.Incident, error) {
	b := &builder{}
	conds := []string{"camera.cam_server_id = " + b.bind(camServerID)}
	more, err := b.where("incident", q, incidentFields)
	if err != nil {
		return nil, err
	}
	conds = append(conds, more...)
	order, err := orderBy("incident", q, incidentFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+incidentCols+` FROM incident
		 JOIN camera ON camera.id = incident.camera_id`+
			whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list incidents by server", err)
	}
	defer rows.Close()
	return collectIncidents(rows)
}

func (s *PGStore) CountIncidentsByServer(ctx context.Context, camServerID int64, updatedBefore time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM incident
		 JOIN camera ON camera.id = incident.camera_id
		 WHERE camera.cam_server_id = $1 AND incident.deleted = FALSE AND incident.updated_at <= $2`,
		camServerID, updatedBefore).Scan(&n)
	if err != nil {
		return 0, storeErr("count incidents by server", err)
	}
	return n, nil
}

func collectIncidents(rows pgx.Rows) ([]*camguard.Incident, error) {
	out := []*camguard.Incident{}
	for rows.Next() {
		v, err := scanIncident(rows)
		if err != nil {
			return nil, storeErr("scan incident", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows incidents", err)
	}
	return out, nil
}
