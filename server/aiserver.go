package main

import (
	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
)

func (s *server) listAIServers(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	eqFilter(c, &q, "is_active", "is_active")
	if !u.IsSuperuser {
		if u.CompanyID == nil {
			return c.JSON([]*camguard.AIServer{})
		}
		q.Filters = append(q.Filters, camguard.Filter{
			Field: camguard.FieldRef{Name: "company_id"}, Op: camguard.OpEq, Value: *u.CompanyID,
		})
	}
	out, err := s.store.ListAIServers(c.Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) createAIServer(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	var in camguard.AIServerInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if !u.IsSuperuser {
		if u.CompanyID == nil || (in.CompanyID != nil && *in.CompanyID != *u.CompanyID) {
			return s.fail(c, camguard.ErrPermissionDenied)
		}
		in.CompanyID = u.CompanyID
	}
	out, err := s.store.CreateAIServer(c.Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *server) getAIServer(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	out, err := s.store.GetAIServer(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if !sameCompany(u, out.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	return c.JSON(out)
}

func (s *server) updateAIServer(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	current, err := s.store.GetAIServer(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if !sameCompany(u, current.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	var in camguard.AIServerInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if !u.IsSuperuser && in.CompanyID != nil && !sameCompany(u, in.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	out, err := s.store.UpdateAIServer(c.Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) removeAIServer(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	current, err := s.store.GetAIServer(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if !sameCompany(u, current.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	if err := s.store.RemoveAIServer(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
