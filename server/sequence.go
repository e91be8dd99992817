package main

import (
	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
)

func (s *server) listSequences(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	eqFilter(c, &q, "company_id", "company_id")
	if !u.IsSuperuser {
		if u.CompanyID == nil {
			return c.JSON([]*camguard.Sequence{})
		}
		q.Filters = append(q.Filters, camguard.Filter{
			Field: camguard.FieldRef{Name: "company_id"}, Op: camguard.OpEq, Value: *u.CompanyID,
		})
	}
	out, err := s.store.ListSequences(c.Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) createSequence(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	var in camguard.SequenceInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.Name == "" {
		return badRequest(c, "name is required")
	}
	if !u.IsSuperuser {
		if u.CompanyID == nil || (in.CompanyID != 0 && in.CompanyID != *u.CompanyID) {
			return s.fail(c, camguard.ErrPermissionDenied)
		}
		in.CompanyID = *u.CompanyID
	}
	// The owning company must exist before any graph row is written.
	if _, err := s.store.GetCompany(c.Context(), in.CompanyID); err != nil {
		return s.fail(c, err)
	}
	out, err := s.store.CreateSequence(c.Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *server) sequenceOwner(c fiber.Ctx, u *camguard.User, id int64) (*camguard.Sequence, error) {
	seq, err := s.store.GetSequence(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if !sameCompanyID(u, seq.CompanyID) {
		return nil, camguard.ErrPermissionDenied
	}
	return seq, nil
}

func (s *server) getSequence(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := s.sequenceOwner(c, u, id); err != nil {
		return s.fail(c, err)
	}
	out, err := s.store.GetSequenceGraph(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) updateSequence(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	seq, err := s.sequenceOwner(c, u, id)
	if err != nil {
		return s.fail(c, err)
	}
	var in camguard.SequenceInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.Name == "" {
		in.Name = seq.Name
	}
	if !u.IsSuperuser && in.CompanyID != 0 && !sameCompanyID(u, in.CompanyID) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	out, err := s.store.UpdateSequence(c.Context(), id, in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

func (s *server) removeSequence(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := s.sequenceOwner(c, u, id); err != nil {
		return s.fail(c, err)
	}
	if err := s.store.RemoveSequence(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// linkSequences is the bridge's sequence pull: every sequence mapped onto
// one of its cameras, graph included.
func (s *server) linkSequences(c fiber.Ctx) error {
	srv, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	if q.Limit == 0 {
		q.Limit = -1
	}
	out, err := s.store.ListSequenceGraphsByServer(c.Context(), srv.ID, q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}
