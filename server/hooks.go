package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/telegram"
)

// telegramHook consumes Bot API webhook deliveries: "/start <access_token>"
// registers the chat on the matching camera server, and incident button
// presses mark the incident. Telegram always gets a 200 back so it does not
// retry messages we chose to ignore.
func (s *server) telegramHook(c fiber.Ctx) error {
	if s.bot == nil || s.cfg.WebhookSecret == "" || c.Params("secret") != s.cfg.WebhookSecret {
		return c.SendStatus(fiber.StatusNotFound)
	}
	var upd telegram.Update
	if err := c.Bind().JSON(&upd); err != nil {
		return badRequest(c, "invalid body")
	}
	switch {
	case upd.Message != nil:
		s.hookMessage(c, upd.Message)
	case upd.CallbackQuery != nil:
		s.hookCallback(c, upd.CallbackQuery)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *server) hookMessage(c fiber.Ctx, msg *telegram.Message) {
	token, ok := strings.CutPrefix(strings.TrimSpace(msg.Text), "/start ")
	if !ok {
		return
	}
	token = strings.TrimSpace(token)
	srv, err := s.store.GetCamServerByAccessToken(c.Context(), token)
	if err != nil {
		_ = s.bot.SendMessage(c.Context(), msg.Chat.ID, "Unknown access token")
		return
	}
	title := msg.Chat.Title
	if title == "" && msg.From != nil {
		title = msg.From.Username
	}
	meta, changed := srv.WithTelegramChat(camguard.TelegramChat{ChatID: msg.Chat.ID, Title: title})
	if changed {
		if _, err := s.store.UpdateCamServer(c.Context(), srv.ID, camguard.CamServerInput{Meta: meta}); err != nil {
			s.log.Error("register chat", "chat_id", msg.Chat.ID, "error", err)
			return
		}
	}
	_ = s.bot.SendMessage(c.Context(), msg.Chat.ID,
		"This chat now receives incident notifications for "+srv.Name)
}

func (s *server) hookCallback(c fiber.Ctx, query *telegram.CallbackQuery) {
	var data telegram.CallbackData
	if err := json.Unmarshal([]byte(query.Data), &data); err != nil || data.IncidentID == 0 {
		_ = s.bot.AnswerCallbackQuery(c.Context(), query.ID, "Malformed action")
		return
	}
	inc, err := s.store.GetIncident(c.Context(), data.IncidentID)
	if err != nil {
		_ = s.bot.AnswerCallbackQuery(c.Context(), query.ID, "Incident not found")
		return
	}
	if !s.withinWindow(inc) {
		_ = s.bot.AnswerCallbackQuery(c.Context(), query.ID, "Notification expired")
		return
	}

	byUser := query.From.Username
	if byUser == "" {
		byUser = query.From.FirstName
	}
	var answer string
	switch {
	case data.Acknowledge != nil && *data.Acknowledge:
		now := time.Now()
		_, err = s.store.MarkIncident(c.Context(), inc.ID, &now, nil, byUser)
		answer = "Acknowledged"
	case data.Inaccurate != nil && *data.Inaccurate:
		yes := true
		_, err = s.store.MarkIncident(c.Context(), inc.ID, nil, &yes, byUser)
		answer = "Marked inaccurate"
	default:
		_ = s.bot.AnswerCallbackQuery(c.Context(), query.ID, "Malformed action")
		return
	}
	if err != nil {
		s.log.Error("mark incident from chat", "incident", inc.ID, "error", err)
		_ = s.bot.AnswerCallbackQuery(c.Context(), query.ID, "Update failed")
		return
	}
	_ = s.bot.AnswerCallbackQuery(c.Context(), query.ID, answer)
	if query.Message != nil {
		// Strip the buttons so the verdict can't be flipped from the chat.
		_ = s.bot.EditMessageReplyMarkup(c.Context(), query.Message.Chat.ID, query.Message.MessageID, nil)
	}
}
