package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
)

// fail maps domain errors onto HTTP statuses: not found → 404, permission →
// 403, validation → 422, everything else → 500 with the detail kept out of
// the response.
func (s *server) fail(c fiber.Ctx, err error) error {
	var verr *camguard.ValidationError
	switch {
	case errors.Is(err, camguard.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, camguard.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission denied"})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": verr.Error()})
	}
	s.log.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func parseID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// fieldRef parses "name" or "via.name" order/filter keys into the typed
// one-hop descriptor.
func fieldRef(key string) camguard.FieldRef {
	if via, name, ok := strings.Cut(key, "."); ok {
		return camguard.FieldRef{Name: name, Via: via}
	}
	return camguard.FieldRef{Name: key}
}

// listQuery reads the shared paging and ordering parameters: limit, offset
// and order_by (comma-separated, "-" prefix for descending).
func listQuery(c fiber.Ctx) camguard.ListQuery {
	var q camguard.ListQuery
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Offset = n
		}
	}
	if v := c.Query("order_by"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			desc := strings.HasPrefix(part, "-")
			q.OrderBy = append(q.OrderBy, camguard.Order{
				Field: fieldRef(strings.TrimPrefix(part, "-")),
				Desc:  desc,
			})
		}
	}
	return q
}

// eqFilter appends field = value when the query parameter is present.
func eqFilter(c fiber.Ctx, q *camguard.ListQuery, param, field string) {
	v := c.Query(param)
	if v == "" {
		return
	}
	value := any(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		value = n
	} else if b, err := strconv.ParseBool(v); err == nil {
		value = b
	}
	q.Filters = append(q.Filters, camguard.Filter{
		Field: fieldRef(field), Op: camguard.OpEq, Value: value,
	})
}
