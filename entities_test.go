package camguard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramChats(t *testing.T) {
	srv := &CamServer{}
	assert.Nil(t, srv.TelegramChats())

	srv.Meta = json.RawMessage(`{"telegram":[{"chat_id":5,"title":"ops"}],"other":true}`)
	chats := srv.TelegramChats()
	require.Len(t, chats, 1)
	assert.Equal(t, int64(5), chats[0].ChatID)
	assert.Equal(t, "ops", chats[0].Title)
}

func TestWithTelegramChat(t *testing.T) {
	srv := &CamServer{}

	meta, changed := srv.WithTelegramChat(TelegramChat{ChatID: 5, Title: "ops"})
	require.True(t, changed)
	srv.Meta = meta
	require.Len(t, srv.TelegramChats(), 1)

	// Registering the same chat again is a no-op.
	_, changed = srv.WithTelegramChat(TelegramChat{ChatID: 5, Title: "renamed"})
	assert.False(t, changed)

	meta, changed = srv.WithTelegramChat(TelegramChat{ChatID: 6})
	require.True(t, changed)
	srv.Meta = meta
	assert.Len(t, srv.TelegramChats(), 2)
}

func TestWithTelegramChatKeepsOtherMeta(t *testing.T) {
	srv := &CamServer{Meta: json.RawMessage(`{"region":"east"}`)}
	meta, changed := srv.WithTelegramChat(TelegramChat{ChatID: 5})
	require.True(t, changed)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(meta, &m))
	assert.Contains(t, m, "region")
	assert.Contains(t, m, "telegram")
}

func TestWithoutTelegramChat(t *testing.T) {
	srv := &CamServer{Meta: json.RawMessage(`{"telegram":[{"chat_id":5},{"chat_id":6}]}`)}

	meta, changed := srv.WithoutTelegramChat(5)
	require.True(t, changed)
	srv.Meta = meta
	chats := srv.TelegramChats()
	require.Len(t, chats, 1)
	assert.Equal(t, int64(6), chats[0].ChatID)

	_, changed = srv.WithoutTelegramChat(99)
	assert.False(t, changed)
}
