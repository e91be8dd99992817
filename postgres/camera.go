package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/camguard/camguard"
)

const cameraCols = `camera.id, camera.name, camera.location, camera.description, camera.connection, camera.is_active, camera.is_live, camera.cam_server_id, camera.created_at, camera.updated_at`

var cameraFields = map[string]string{
	"id":                     "camera.id",
	"name":                   "camera.name",
	"location":               "camera.location",
	"description":            "camera.description",
	"is_active":              "camera.is_active",
	"is_live":                "camera.is_live",
	"cam_server_id":          "camera.cam_server_id",
	"created_at":             "camera.created_at",
	"updated_at":             "camera.updated_at",
	"cam_server.company_id":  "cam_server.company_id",
	"cam_server.name":        "cam_server.name",
}

func scanCamera(sc scanner) (*camguard.Camera, error) {
	var c camguard.Camera
	err := sc.Scan(&c.ID, &c.Name, &c.Location, &c.Description, &c.Connection,
		&c.IsActive, &c.IsLive, &c.CamServerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) CreateCamera(ctx context.Context, in camguard.CameraInput) (*camguard.Camera, error) {
	if in.CamServerID == nil {
		return nil, &camguard.ValidationError{Index: 0, Field: "cam_server_id", Reason: "required"}
	}
	row := s.db.QueryRow(ctx,
		`INSERT INTO camera (name, location, description, connection, is_active, is_live, cam_server_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+cameraCols,
		text(in.Name), text(in.Location), text(in.Description), text(in.Connection),
		flag(in.IsActive), flag(in.IsLive), *in.CamServerID,
	)
	c, err := scanCamera(row)
	if err != nil {
		return nil, storeErr("insert camera", err)
	}
	return c, nil
}

func (s *PGStore) GetCamera(ctx context.Context, id int64) (*camguard.Camera, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+cameraCols+` FROM camera WHERE id = $1 AND deleted = FALSE`, id)
	c, err := scanCamera(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get camera", err)
	}
	return c, nil
}

func (s *PGStore) UpdateCamera(ctx context.Context, id int64, in camguard.CameraInput) (*camguard.Camera, error) {
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
	if in.CamServerID != nil {
		sets = append(sets, "cam_server_id = "+b.bind(*in.CamServerID))
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.db.QueryRow(ctx,
		`UPDATE camera SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+cameraCols,
		b.args...)
	c, err := scanCamera(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("update camera", err)
	}
	return c, nil
}

// SetCameraLive flips the liveness flag. updated_at is bumped even when the
// flag value is unchanged so feed streams see every heartbeat transition.
func (s *PGStore) SetCameraLive(ctx context.Context, id int64, live bool) (*camguard.Camera, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE camera SET is_live = $1, updated_at = NOW() WHERE id = $2 AND deleted = FALSE RETURNING `+cameraCols,
		live, id)
	c, err := scanCamera(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("set camera live", err)
	}
	return c, nil
}

func (s *PGStore) RemoveCamera(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE camera SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return storeErr("remove camera", err)
	}
	if ct.RowsAffected() == 0 {
		return camguard.ErrNotFound
	}
	return nil
}

func (s *PGStore) ListCameras(ctx context.Context, q camguard.ListQuery) ([]*camguard.Camera, error) {
	b := &builder{}
	conds, err := b.where("camera", q, cameraFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("camera", q, cameraFields)
	if err != nil {
		return nil, err
	}
	join := ""
	if hopUsed(q, "cam_server") {
		join = ` LEFT JOIN cam_server ON cam_server.id = camera.cam_server_id`
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+cameraCols+` FROM camera`+join+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list cameras", err)
	}
	defer rows.Close()
	return collectCameras(rows)
}

// ListCamerasByServer returns the cameras of one camera server; it backs the
// bridge's /link read and the camera feed stream.
func (s *PGStore) ListCamerasByServer(ctx context.Context, camServerID int64, q camguard.ListQuery) ([]*camguard.Camera, error) {
	b := &builder{}
	conds := []string{"camera.cam_server_id = " + b.bind(camServerID)}
	more, err := b.where("camera", q, cameraFields)
	if err != nil {
		return nil, err
	}
	conds = append(conds, more...)
	order, err := orderBy("camera", q, cameraFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+cameraCols+` FROM camera`+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list cameras by server", err)
	}
	defer rows.Close()
	return collectCameras(rows)
}

// CountCamerasByServer counts the server's cameras updated at or before the
// cursor; the feed uses it to detect removals.
func (s *PGStore) CountCamerasByServer(ctx context.Context, camServerID int64, updatedBefore time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM camera WHERE cam_server_id = $1 AND deleted = FALSE AND updated_at <= $2`,
		camServerID, updatedBefore).Scan(&n)
	if err != nil {
		return 0, storeErr("count cameras by server", err)
	}
	return n, nil
}

func collectCameras(rows pgx.Rows) ([]*camguard.Camera, error) {
	out := []*camguard.Camera{}
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, storeErr("scan camera", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows cameras", err)
	}
	return out, nil
}
