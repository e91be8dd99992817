package main

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
)

// user authenticates the request's Bearer token against the user table.
func (s *server) user(c fiber.Ctx) (*camguard.User, error) {
	header := c.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, camguard.ErrPermissionDenied
	}
	u, err := s.store.GetUserByToken(c.Context(), token)
	if err != nil {
		if err == camguard.ErrNotFound {
			return nil, camguard.ErrPermissionDenied
		}
		return nil, err
	}
	return u, nil
}

// superuser is user plus the superuser flag.
func (s *server) superuser(c fiber.Ctx) (*camguard.User, error) {
	u, err := s.user(c)
	if err != nil {
		return nil, err
	}
	if !u.IsSuperuser {
		return nil, camguard.ErrPermissionDenied
	}
	return u, nil
}

// bridge authenticates an edge server by its Access-Token header.
func (s *server) bridge(c fiber.Ctx) (*camguard.CamServer, error) {
	token := c.Get("Access-Token")
	if token == "" {
		return nil, camguard.ErrPermissionDenied
	}
	v, err := s.store.GetCamServerByAccessToken(c.Context(), token)
	if err != nil {
		if err == camguard.ErrNotFound {
			return nil, camguard.ErrPermissionDenied
		}
		return nil, err
	}
	return v, nil
}

// sameCompany reports whether the user may touch a resource owned by the
// given company. Superusers may touch everything; a user without a company
// may touch nothing company-owned.
func sameCompany(u *camguard.User, companyID *int64) bool {
	if u.IsSuperuser {
		return true
	}
	if u.CompanyID == nil || companyID == nil {
		return false
	}
	return *u.CompanyID == *companyID
}

func sameCompanyID(u *camguard.User, companyID int64) bool {
	return sameCompany(u, &companyID)
}
