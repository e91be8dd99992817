package main

import (
	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
)

// cameraOwner loads the camera and checks it against the user's company
// through the owning server.
func (s *server) cameraOwner(c fiber.Ctx, u *camguard.User, id int64) (*camguard.Camera, error) {
	cam, err := s.store.GetCamera(c.Context(), id)
	if err != nil {
		return nil, err
	}
	srv, err := s.store.GetCamServer(c.Context(), cam.CamServerID)
	if err != nil {
		return nil, err
	}
	if !sameCompany(u, srv.CompanyID) {
		return nil, camguard.ErrPermissionDenied
	}
	return cam, nil
}

func (s *server) listCameras(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	eqFilter(c, &q, "cam_server_id", "cam_server_id")
	eqFilter(c, &q, "is_live", "is_live")
	if !u.IsSuperuser {
		if u.CompanyID == nil {
			return c.JSON([]*camguard.Camera{})
		}
		q.Filters = append(q.Filters, camguard.Filter{
			Field: camguard.FieldRef{Name: "company_id", Via: "cam_server"},
			Op:    camguard.OpEq, Value: *u.CompanyID,
		})
	}
	out, err := s.store.ListCameras(c.Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) createCamera(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	var in camguard.CameraInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.CamServerID == nil {
		return badRequest(c, "cam_server_id is required")
	}
	srv, err := s.store.GetCamServer(c.Context(), *in.CamServerID)
	if err != nil {
		return s.fail(c, err)
	}
	if !sameCompany(u, srv.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	out, err := s.store.CreateCamera(c.Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *server) getCamera(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	cam, err := s.cameraOwner(c, u, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(cam)
}

func (s *server) updateCamera(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := s.cameraOwner(c, u, id); err != nil {
		return s.fail(c, err)
	}
	var in camguard.CameraInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.CamServerID != nil {
		// Moving the camera needs ownership of the target server too.
		srv, err := s.store.GetCamServer(c.Context(), *in.CamServerID)
		if err != nil {
			return s.fail(c, err)
		}
		if !sameCompany(u, srv.CompanyID) {
			return s.fail(c, camguard.ErrPermissionDenied)
		}
	}
	out, err := s.store.UpdateCamera(c.Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) removeCamera(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := s.cameraOwner(c, u, id); err != nil {
		return s.fail(c, err)
	}
	if err := s.store.RemoveCamera(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// linkCameras is the bridge's camera pull.
func (s *server) linkCameras(c fiber.Ctx) error {
	srv, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	if q.Limit == 0 {
		q.Limit = -1
	}
	out, err := s.store.ListCamerasByServer(c.Context(), srv.ID, q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

// cameraStatus is the bridge's liveness heartbeat for one camera.
func (s *server) cameraStatus(c fiber.Ctx) error {
	srv, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	cam, err := s.store.GetCamera(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if cam.CamServerID != srv.ID {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	var body struct {
		IsLive bool `json:"is_live"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := s.store.SetCameraLive(c.Context(), id, body.IsLive)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}
