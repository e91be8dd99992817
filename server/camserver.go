package main

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/camguard/camguard"
)

// currentCamServer is the bridge's identity endpoint: it returns the server
// row the Access-Token resolves to, token included, so bridges can verify
// their registration.
func (s *server) currentCamServer(c fiber.Ctx) error {
	v, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(v)
}

func (s *server) listCamServers(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	eqFilter(c, &q, "is_active", "is_active")
	eqFilter(c, &q, "is_live", "is_live")
	if !u.IsSuperuser {
		if u.CompanyID == nil {
			return c.JSON([]*camguard.CamServer{})
		}
		q.Filters = append(q.Filters, camguard.Filter{
			Field: camguard.FieldRef{Name: "company_id"}, Op: camguard.OpEq, Value: *u.CompanyID,
		})
	}
	out, err := s.store.ListCamServers(c.Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) createCamServer(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	var in camguard.CamServerInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if !u.IsSuperuser {
		// Company users create servers inside their own tenant only.
		if u.CompanyID == nil || (in.CompanyID != nil && *in.CompanyID != *u.CompanyID) {
			return s.fail(c, camguard.ErrPermissionDenied)
		}
		in.CompanyID = u.CompanyID
	}
	out, err := s.store.CreateCamServer(c.Context(), in, uuid.NewString())
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *server) getCamServer(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	out, err := s.store.GetCamServer(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if !sameCompany(u, out.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	return c.JSON(out)
}

func (s *server) updateCamServer(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	current, err := s.store.GetCamServer(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if !sameCompany(u, current.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	var in camguard.CamServerInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if !u.IsSuperuser && in.CompanyID != nil && !sameCompany(u, in.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	out, err := s.store.UpdateCamServer(c.Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) removeCamServer(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	current, err := s.store.GetCamServer(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if !sameCompany(u, current.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	if err := s.store.RemoveCamServer(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
