package telegram

import (
	"context"
	"encoding/json"
	"fmt"
)

// CallbackData is the payload packed into the inline buttons of an incident
// notification and parsed back out of the webhook's callback query.
type CallbackData struct {
	IncidentID  int64 `json:"incident_id"`
	Acknowledge *bool `json:"acknowledge,omitempty"`
	Inaccurate  *bool `json:"inaccurate,omitempty"`
}

// IncidentNotice carries the fields of an incident notification message.
type IncidentNotice struct {
	IncidentID     int64
	MappingName    string
	CameraName     string
	Location       string
	ServerLocation string
	FrameURL       string
}

func incidentKeyboard(incidentID int64) *InlineKeyboardMarkup {
	yes := true
	ack, _ := json.Marshal(CallbackData{IncidentID: incidentID, Acknowledge: &yes})
	bad, _ := json.Marshal(CallbackData{IncidentID: incidentID, Inaccurate: &yes})
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "✅ Acknowledge", CallbackData: string(ack)},
			{Text: "❌ Inaccurate", CallbackData: string(bad)},
		}},
	}
}

func incidentCaption(n IncidentNotice) string {
	return fmt.Sprintf("Incident *%s* detected by _%s_\nLocation: *%s* at *%s*",
		Escape(n.MappingName), Escape(n.CameraName),
		Escape(n.Location), Escape(n.ServerLocation))
}

// NotifyIncident sends the incident photo with acknowledge/inaccurate buttons
// to every chat. A per-chat failure does not stop the rest; the ids of chats
// that rejected the message are returned so callers can unregister them.
func (c *Client) NotifyIncident(ctx context.Context, chatIDs []int64, n IncidentNotice) (failed []int64) {
	caption := incidentCaption(n)
	markup := incidentKeyboard(n.IncidentID)
	for _, chatID := range chatIDs {
		if _, err := c.SendPhoto(ctx, chatID, n.FrameURL, caption, markup); err != nil {
			failed = append(failed, chatID)
		}
	}
	return failed
}
