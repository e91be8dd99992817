// Package telegram is a minimal Telegram Bot API client for incident
// notifications: photo messages with inline acknowledge/inaccurate buttons,
// plus the webhook types needed to consume the replies.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Client talks to the Telegram Bot API over HTTP.
type Client struct {
	token  string
	base   string
	client *http.Client
}

// NewClient creates a client for the given bot token.
func NewClient(token string) *Client {
	return &Client{
		token:  token,
		base:   defaultBaseURL,
		client: &http.Client{Timeout: 40 * time.Second},
	}
}

// NewClientWithBase is NewClient against a different API host, for tests.
func NewClientWithBase(token, base string) *Client {
	c := NewClient(token)
	c.base = base
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram: %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s: read response: %w", method, err)
	}
	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("telegram: %s: decode response: %w", method, err)
	}
	if !out.OK {
		return nil, fmt.Errorf("telegram: %s: api error: %s", method, out.Description)
	}
	return out.Result, nil
}

// SendMessage sends a plain text message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	return err
}

// SendPhoto sends a photo by URL with a MarkdownV2 caption and an optional
// inline keyboard. It returns the sent message id so callers can edit it
// later.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, markup *InlineKeyboardMarkup) (int64, error) {
	payload := map[string]any{
		"chat_id":    chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "MarkdownV2",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	raw, err := c.call(ctx, "sendPhoto", payload)
	if err != nil {
		return 0, err
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, fmt.Errorf("telegram: sendPhoto: decode message: %w", err)
	}
	return msg.MessageID, nil
}

// AnswerCallbackQuery acknowledges a button press with a toast text.
func (c *Client) AnswerCallbackQuery(ctx context.Context, queryID, text string) error {
	_, err := c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": queryID,
		"text":              text,
	})
	return err
}

// EditMessageReplyMarkup replaces a message's inline keyboard; a nil markup
// strips the buttons.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int64, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := c.call(ctx, "editMessageReplyMarkup", payload)
	return err
}

// markdownV2 special characters, each of which must be backslash-escaped in
// captions.
const escapeChars = "_*[]()~`>#+-=|{}.!"

// Escape backslash-escapes MarkdownV2 special characters.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(escapeChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
