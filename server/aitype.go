package main

import (
	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
)

// anyPrincipal accepts either a user token or a bridge Access-Token. The
// detection-type catalogue is global, so bridges read it too.
func (s *server) anyPrincipal(c fiber.Ctx) error {
	if _, err := s.user(c); err == nil {
		return nil
	}
	if _, err := s.bridge(c); err == nil {
		return nil
	}
	return camguard.ErrPermissionDenied
}

func (s *server) listAITypes(c fiber.Ctx) error {
	if err := s.anyPrincipal(c); err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	if q.Limit == 0 {
		q.Limit = -1
	}
	out, err := s.store.ListAITypes(c.Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) createAIType(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	var in camguard.AITypeInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := s.store.CreateAIType(c.Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *server) getAIType(c fiber.Ctx) error {
	if err := s.anyPrincipal(c); err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	out, err := s.store.GetAIType(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) updateAIType(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var in camguard.AITypeInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := s.store.UpdateAIType(c.Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) removeAIType(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.store.RemoveAIType(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
