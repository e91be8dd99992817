package main

import (
	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
)

func (s *server) listMappings(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	eqFilter(c, &q, "sequence_id", "sequence_id")
	eqFilter(c, &q, "camera_id", "camera_id")
	if !u.IsSuperuser {
		if u.CompanyID == nil {
			return c.JSON([]*camguard.Mapping{})
		}
		q.Filters = append(q.Filters, camguard.Filter{
			Field: camguard.FieldRef{Name: "company_id", Via: "ai_sequence"},
			Op:    camguard.OpEq, Value: *u.CompanyID,
		})
	}
	out, err := s.store.ListMappings(c.Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

// checkMappingRefs verifies both ends of a mapping belong to the user's
// company.
func (s *server) checkMappingRefs(c fiber.Ctx, u *camguard.User, sequenceID, cameraID *int64) error {
	if sequenceID != nil {
		seq, err := s.store.GetSequence(c.Context(), *sequenceID)
		if err != nil {
			return err
		}
		if !sameCompanyID(u, seq.CompanyID) {
			return camguard.ErrPermissionDenied
		}
	}
	if cameraID != nil {
		if _, err := s.cameraOwner(c, u, *cameraID); err != nil {
			return err
		}
	}
	return nil
}

func (s *server) createMapping(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	var in camguard.MappingInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.SequenceID == nil || in.CameraID == nil {
		return badRequest(c, "sequence_id and camera_id are required")
	}
	if err := s.checkMappingRefs(c, u, in.SequenceID, in.CameraID); err != nil {
		return s.fail(c, err)
	}
	out, err := s.store.CreateMapping(c.Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *server) mappingOwner(c fiber.Ctx, u *camguard.User, id int64) (*camguard.Mapping, error) {
	m, err := s.store.GetMapping(c.Context(), id)
	if err != nil {
		return nil, err
	}
	seq, err := s.store.GetSequence(c.Context(), m.SequenceID)
	if err != nil {
		return nil, err
	}
	if !sameCompanyID(u, seq.CompanyID) {
		return nil, camguard.ErrPermissionDenied
	}
	return m, nil
}

func (s *server) getMapping(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	m, err := s.mappingOwner(c, u, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(m)
}

func (s *server) updateMapping(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := s.mappingOwner(c, u, id); err != nil {
		return s.fail(c, err)
	}
	var in camguard.MappingInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := s.checkMappingRefs(c, u, in.SequenceID, in.CameraID); err != nil {
		return s.fail(c, err)
	}
	out, err := s.store.UpdateMapping(c.Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) removeMapping(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := s.mappingOwner(c, u, id); err != nil {
		return s.fail(c, err)
	}
	if err := s.store.RemoveMapping(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// linkMappings is the bridge's mapping pull.
func (s *server) linkMappings(c fiber.Ctx) error {
	srv, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	if q.Limit == 0 {
		q.Limit = -1
	}
	out, err := s.store.ListMappingsByServer(c.Context(), srv.ID, q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}
