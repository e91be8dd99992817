package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, `loading dock \#2 \(north\)`, Escape("loading dock #2 (north)"))
	assert.Equal(t, `a\_b\*c`, Escape("a_b*c"))
	assert.Equal(t, "plain", Escape("plain"))
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer ts.Close()

	c := NewClientWithBase("tok", ts.URL)
	err := c.SendMessage(context.Background(), 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, "/bottok/sendMessage", gotPath)
	assert.Equal(t, float64(42), gotBody["chat_id"])
	assert.Equal(t, "hello", gotBody["text"])
}

func TestSendPhotoReturnsMessageID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "MarkdownV2", body["parse_mode"])
		assert.NotNil(t, body["reply_markup"])
		w.Write([]byte(`{"ok":true,"result":{"message_id":77,"chat":{"id":42,"type":"group"}}}`))
	}))
	defer ts.Close()

	c := NewClientWithBase("tok", ts.URL)
	msgID, err := c.SendPhoto(context.Background(), 42, "http://frames/1.jpg", "caption",
		incidentKeyboard(9))
	require.NoError(t, err)
	assert.Equal(t, int64(77), msgID)
}

func TestCallAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"description":"bot was kicked"}`))
	}))
	defer ts.Close()

	c := NewClientWithBase("tok", ts.URL)
	err := c.SendMessage(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was kicked")
}

func TestNotifyIncidentCollectsFailedChats(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		if body["chat_id"] == float64(2) {
			w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"group"}}}`))
	}))
	defer ts.Close()

	c := NewClientWithBase("tok", ts.URL)
	failed := c.NotifyIncident(context.Background(), []int64{1, 2, 3}, IncidentNotice{
		IncidentID:  9,
		MappingName: "ppe-check",
		CameraName:  "gate-1",
		Location:    "dock #2",
	})
	assert.Equal(t, []int64{2}, failed)
}

func TestIncidentCaptionEscapes(t *testing.T) {
	got := incidentCaption(IncidentNotice{
		MappingName:    "ppe-check",
		CameraName:     "gate_1",
		Location:       "dock #2",
		ServerLocation: "plant (north)",
	})
	assert.Equal(t,
		"Incident *ppe\\-check* detected by _gate\\_1_\nLocation: *dock \\#2* at *plant \\(north\\)*",
		got)
}

func TestIncidentKeyboardRoundTrip(t *testing.T) {
	kb := incidentKeyboard(9)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)

	var ack CallbackData
	require.NoError(t, json.Unmarshal([]byte(kb.InlineKeyboard[0][0].CallbackData), &ack))
	assert.Equal(t, int64(9), ack.IncidentID)
	require.NotNil(t, ack.Acknowledge)
	assert.True(t, *ack.Acknowledge)
	assert.Nil(t, ack.Inaccurate)

	var bad CallbackData
	require.NoError(t, json.Unmarshal([]byte(kb.InlineKeyboard[0][1].CallbackData), &bad))
	require.NotNil(t, bad.Inaccurate)
	assert.True(t, *bad.Inaccurate)
}
