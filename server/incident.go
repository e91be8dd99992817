package main

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/telegram"
)

// createIncident is the bridge's report endpoint. The mapping must resolve
// to a camera of the calling server; camera id and location are denormalized
// onto the incident, then the server's registered chats get notified.
func (s *server) createIncident(c fiber.Ctx) error {
	srv, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	var in camguard.IncidentInput
	if err := c.Bind().JSON(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.AIMappingID == 0 {
		return badRequest(c, "ai_mapping_id is required")
	}
	m, err := s.store.GetMapping(c.Context(), in.AIMappingID)
	if err != nil {
		return s.fail(c, err)
	}
	cam, err := s.store.GetCamera(c.Context(), m.CameraID)
	if err != nil {
		return s.fail(c, err)
	}
	if cam.CamServerID != srv.ID {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	out, err := s.store.CreateIncident(c.Context(), in, cam.ID, cam.Location)
	if err != nil {
		return s.fail(c, err)
	}

	if s.bot != nil {
		go s.notifyIncident(srv, m, cam, out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// notifyIncident pushes the incident to the server's registered chats and
// unregisters chats that reject the message.
func (s *server) notifyIncident(srv *camguard.CamServer, m *camguard.Mapping, cam *camguard.Camera, inc *camguard.Incident) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	chats := srv.TelegramChats()
	if len(chats) == 0 {
		return
	}
	ids := make([]int64, 0, len(chats))
	for _, chat := range chats {
		ids = append(ids, chat.ChatID)
	}
	failed := s.bot.NotifyIncident(ctx, ids, telegram.IncidentNotice{
		IncidentID:     inc.ID,
		MappingName:    m.Name,
		CameraName:     cam.Name,
		Location:       inc.Location,
		ServerLocation: srv.Location,
		FrameURL:       inc.Frame,
	})
	for _, chatID := range failed {
		s.log.Warn("telegram notification failed", "chat_id", chatID, "incident", inc.ID)
		meta, changed := srv.WithoutTelegramChat(chatID)
		if !changed {
			continue
		}
		srv.Meta = meta
		_, err := s.store.UpdateCamServer(ctx, srv.ID, camguard.CamServerInput{Meta: meta})
		if err != nil {
			s.log.Error("unregister chat", "chat_id", chatID, "error", err)
		}
	}
}

// incidentFilters translates the incident list's query parameters.
func incidentFilters(c fiber.Ctx, q *camguard.ListQuery) {
	if v := c.Query("type"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.Filters = append(q.Filters, camguard.Filter{
				Field: camguard.FieldRef{Name: "type"}, Op: camguard.OpContains, Value: []int64{n},
			})
		}
	}
	eqFilter(c, q, "camera_id", "camera_id")
	eqFilter(c, q, "inaccurate", "inaccurate")
	eqFilter(c, q, "cam_server_id", "camera.cam_server_id")
	if v := c.Query("acknowledged"); v != "" {
		op := camguard.OpIsNull
		if b, err := strconv.ParseBool(v); err == nil && b {
			op = camguard.OpNotNull
		}
		q.Filters = append(q.Filters, camguard.Filter{
			Field: camguard.FieldRef{Name: "acknowledged"}, Op: op,
		})
	}
	if v := c.Query("created_after"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.Filters = append(q.Filters, camguard.Filter{
				Field: camguard.FieldRef{Name: "created_at"}, Op: camguard.OpGe, Value: t,
			})
		}
	}
	if v := c.Query("created_before"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.Filters = append(q.Filters, camguard.Filter{
				Field: camguard.FieldRef{Name: "created_at"}, Op: camguard.OpLe, Value: t,
			})
		}
	}
}

func (s *server) listIncidents(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	q := listQuery(c)
	incidentFilters(c, &q)
	if u.IsSuperuser {
		out, err := s.store.ListIncidents(c.Context(), q)
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(out)
	}
	if u.CompanyID == nil {
		return c.JSON([]*camguard.Incident{})
	}
	out, err := s.store.ListIncidentsByCompany(c.Context(), *u.CompanyID, q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(out)
}

// incidentOwner checks company ownership through camera → server.
func (s *server) incidentOwner(c fiber.Ctx, u *camguard.User, id int64) (*camguard.Incident, error) {
	inc, err := s.store.GetIncident(c.Context(), id)
	if err != nil {
		return nil, err
	}
	cam, err := s.store.GetCamera(c.Context(), inc.CameraID)
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
	return inc, nil
}

func (s *server) getIncident(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	inc, err := s.incidentOwner(c, u, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(inc)
}

func (s *server) updateIncident(c fiber.Ctx) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	inc, err := s.incidentOwner(c, u, id)
	if err != nil {
		return s.fail(c, err)
	}
	var body struct {
		Acknowledged *time.Time      `json:"acknowledged"`
		Inaccurate   *bool           `json:"inaccurate"`
		Meta         json.RawMessage `json:"meta"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	if body.Acknowledged != nil || body.Inaccurate != nil {
		// Flag rewrites bypass the notification window but stay superuser-only.
		if !u.IsSuperuser {
			return s.fail(c, camguard.ErrPermissionDenied)
		}
		inc, err = s.store.MarkIncident(c.Context(), id, body.Acknowledged, body.Inaccurate, u.Email)
		if err != nil {
			return s.fail(c, err)
		}
	}
	if body.Meta != nil {
		inc, err = s.store.UpdateIncidentMeta(c.Context(), id, body.Meta)
		if err != nil {
			return s.fail(c, err)
		}
	}
	return c.JSON(inc)
}

func (s *server) removeIncident(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.store.RemoveIncident(c.Context(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// withinWindow reports whether the incident can still be marked by an
// operator.
func (s *server) withinWindow(inc *camguard.Incident) bool {
	return time.Since(inc.CreatedAt) <= s.cfg.NotificationWindow
}

func (s *server) acknowledgeIncident(c fiber.Ctx) error {
	return s.markIncident(c, true)
}

func (s *server) inaccurateIncident(c fiber.Ctx) error {
	return s.markIncident(c, false)
}

func (s *server) markIncident(c fiber.Ctx, acknowledge bool) error {
	u, err := s.user(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	inc, err := s.incidentOwner(c, u, id)
	if err != nil {
		return s.fail(c, err)
	}
	if !s.withinWindow(inc) {
		return s.fail(c, camguard.ErrPermissionDenied)
	}
	if acknowledge {
		now := time.Now()
		inc, err = s.store.MarkIncident(c.Context(), id, &now, nil, u.Email)
	} else {
		yes := true
		inc, err = s.store.MarkIncident(c.Context(), id, nil, &yes, u.Email)
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(inc)
}
