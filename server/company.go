package main

import (
	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
)

func (s *server) listCompanies(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	if !u.IsSuperuser {
		// Company users only ever see their own tenant.
		if u.CompanyID == nil {
			return c.JSON([]*camguard.Company{})
		}
		q.Filters = append(q.Filters, camguard.Filter{
			Field: camguard.FieldRef{Name: "id"}, Op: camguard.OpEq, Value: *u.CompanyID,
		})
	}
	out, err := s.store.ListCompanies(c.Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) createCompany(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	var in camguard.CompanyInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := s.store.CreateCompany(c.Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *server) getCompany(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if !sameCompanyID(u, id) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	out, err := s.store.GetCompany(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) updateCompany(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var in camguard.CompanyInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := s.store.UpdateCompany(c.Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) removeCompany(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.store.RemoveCompany(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
