package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/camguard/camguard"
)

const mappingCols = `cam_ai_mapping.id, cam_ai_mapping.name, cam_ai_mapping.meta, cam_ai_mapping.sequence_id, cam_ai_mapping.camera_id, cam_ai_mapping.created_at, cam_ai_mapping.updated_at`

var mappingFields = map[string]string{
	"id":                    "cam_ai_mapping.id",
	"name":                  "cam_ai_mapping.name",
	"sequence_id":           "cam_ai_mapping.sequence_id",
	"camera_id":             "cam_ai_mapping.camera_id",
	"created_at":            "cam_ai_mapping.created_at",
	"updated_at":            "cam_ai_mapping.updated_at",
	"camera.cam_server_id":  "camera.cam_server_id",
	"camera.name":           "camera.name",
	"ai_sequence.name":      "ai_sequence.name",
	"ai_sequence.company_id": "ai_sequence.company_id",
}

func scanMapping(sc scanner) (*camguard.Mapping, error) {
	var m camguard.Mapping
	err := sc.Scan(&m.ID, &m.Name, &m.Meta, &m.SequenceID, &m.CameraID,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PGStore) CreateMapping(ctx context.Context, in camguard.MappingInput) (*camguard.Mapping, error) {
	if in.SequenceID == nil {
		return nil, &camguard.ValidationError{Index: 0, Field: "sequence_id", Reason: "required"}
	}
	if in.CameraID == nil {
		return nil, &camguard.ValidationError{Index: 0, Field: "camera_id", Reason: "required"}
	}
	row := s.db.QueryRow(ctx,
		`INSERT INTO cam_ai_mapping (name, meta, sequence_id, camera_id)
		 VALUES ($1, $2, $3, $4) RETURNING `+mappingCols,
		text(in.Name), jsonArg(in.Meta), *in.SequenceID, *in.CameraID,
	)
	m, err := scanMapping(row)
	if err != nil {
		return nil, storeErr("insert mapping", err)
	}
	return m, nil
}

func (s *PGStore) GetMapping(ctx context.Context, id int64) (*camguard.Mapping, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+mappingCols+` FROM cam_ai_mapping WHERE id = $1 AND deleted = FALSE`, id)
	m, err := scanMapping(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get mapping", err)
	}
	return m, nil
}

func (s *PGStore) UpdateMapping(ctx context.Context, id int64, in camguard.MappingInput) (*camguard.Mapping, error) {
	b := &builder{}
	var sets []string
	if in.Name != nil {
		sets = append(sets, "name = "+b.bind(*in.Name))
	}
	if in.Meta != nil {
		sets = append(sets, "meta = "+b.bind(jsonArg(in.Meta)))
	}
	if in.SequenceID != nil {
		sets = append(sets, "sequence_id = "+b.bind(*in.SequenceID))
	}
	if in.CameraID != nil {
		sets = append(sets, "camera_id = "+b.bind(*in.CameraID))
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.db.QueryRow(ctx,
		`UPDATE cam_ai_mapping SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+mappingCols,
		b.args...)
	m, err := scanMapping(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("update mapping", err)
	}
	return m, nil
}

func (s *PGStore) RemoveMapping(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE cam_ai_mapping SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return storeErr("remove mapping", err)
	}
	if ct.RowsAffected() == 0 {
		return camguard.ErrNotFound
	}
	return nil
}

func (s *PGStore) ListMappings(ctx context.Context, q camguard.ListQuery) ([]*camguard.Mapping, error) {
	b := &builder{}
	conds, err := b.where("cam_ai_mapping", q, mappingFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("cam_ai_mapping", q, mappingFields)
	if err != nil {
		return nil, err
	}
	join := ""
	if hopUsed(q, "camera") {
		join += ` LEFT JOIN camera ON camera.id = cam_ai_mapping.camera_id`
	}
	if hopUsed(q, "ai_sequence") {
		join += ` LEFT JOIN ai_sequence ON ai_sequence.id = cam_ai_mapping.sequence_id`
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+mappingCols+` FROM cam_ai_mapping`+join+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list mappings", err)
	}
	defer rows.Close()
	return collectMappings(rows)
}

// ListMappingsByServer returns the mappings whose camera belongs to the
// server; bridges pull it to learn which sequence runs on which camera.
func (s *PGStore) ListMappingsByServer(ctx context.Context, camServerID int64, q camguard.ListQuery) ([]*camguard.Mapping, error) {
	b := &builder{}
	conds := []string{"camera.cam_server_id = " + b.bind(camServerID)}
	more, err := b.where("cam_ai_mapping", q, mappingFields)
	if err != nil {
		return nil, err
	}
	conds = append(conds, more...)
	order, err := orderBy("cam_ai_mapping", q, mappingFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+mappingCols+` FROM cam_ai_mapping
		 JOIN camera ON camera.id = cam_ai_mapping.camera_id`+
			whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list mappings by server", err)
	}
	defer rows.Close()
	return collectMappings(rows)
}

func collectMappings(rows pgx.Rows) ([]*camguard.Mapping, error) {
	out := []*camguard.Mapping{}
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, storeErr("scan mapping", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows mappings", err)
	}
	return out, nil
}
