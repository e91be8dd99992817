package main

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/camguard/camguard"
)

func (s *server) currentUser(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(u)
}

func (s *server) listUsers(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	if !u.IsSuperuser {
		if u.CompanyID == nil {
			return c.JSON([]*camguard.User{})
		}
		q.Filters = append(q.Filters, camguard.Filter{
			Field: camguard.FieldRef{Name: "company_id"}, Op: camguard.OpEq, Value: *u.CompanyID,
		})
	}
	out, err := s.store.ListUsers(c.Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) createUser(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	var in camguard.UserInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.Email == "" {
		return badRequest(c, "email is required")
	}
	token := uuid.NewString()
	out, err := s.store.CreateUser(c.Context(), in, token)
	if err != nil {
		return s.fail(c, err)
	}
	// The token is surfaced exactly once, at creation.
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": out, "token": token})
}
