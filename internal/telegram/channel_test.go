package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridiv/postbot/internal/config"
	"github.com/stridiv/postbot/internal/domain"
	"github.com/stridiv/postbot/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func testChannel() *Channel {
	return New(config.BotConfig{Token: "test-token", PollTimeout: 30}, testLogger())
}

func TestStatus_NotStarted(t *testing.T) {
	ch := testChannel()
	status := ch.Status()

	assert.False(t, status.Connected)
	assert.False(t, status.Running)
	assert.Empty(t, status.LastError)
}

func TestSend_NotConnected(t *testing.T) {
	ch := testChannel()
	ctx := context.Background()
	to := domain.ChatRef{ID: 1}

	_, err := ch.SendText(ctx, to, "hi", domain.SendOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")

	_, err = ch.SendMedia(ctx, to, domain.MediaItem{Kind: domain.MediaPhoto, FileID: "f"}, "", domain.SendOptions{})
	require.Error(t, err)

	_, err = ch.SendMediaGroup(ctx, to, []domain.MediaItem{{Kind: domain.MediaPhoto, FileID: "f"}}, "")
	require.Error(t, err)

	err = ch.EditMessageText(ctx, domain.MessageRef{Chat: to, MessageID: 1}, "x")
	require.Error(t, err)

	err = ch.AnswerCallback(ctx, "cb")
	require.Error(t, err)
}

func TestDispatchPost_PhotoTakesLargestSize(t *testing.T) {
	ch := testChannel()

	var got domain.InboundPost
	ch.OnPost(func(post domain.InboundPost) { got = post })

	ch.dispatchPost(&tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 100},
		Caption:   "look at this",
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "medium", Width: 320},
			{FileID: "large", Width: 1280},
		},
		MediaGroupID: "g1",
	})

	require.NotNil(t, got.Media)
	assert.Equal(t, domain.MediaPhoto, got.Media.Kind)
	assert.Equal(t, "large", got.Media.FileID)
	assert.Equal(t, "look at this", got.Text)
	assert.Equal(t, "g1", got.GroupID)
	assert.Equal(t, int64(100), got.ChatID)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, 7, got.MessageID)
}

func TestDispatchPost_VideoAndDocument(t *testing.T) {
	ch := testChannel()

	var got domain.InboundPost
	ch.OnPost(func(post domain.InboundPost) { got = post })

	ch.dispatchPost(&tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 100},
		Video:     &tgbotapi.Video{FileID: "v1"},
		Caption:   "clip",
	})
	require.NotNil(t, got.Media)
	assert.Equal(t, domain.MediaVideo, got.Media.Kind)
	assert.Equal(t, "v1", got.Media.FileID)
	assert.Equal(t, "clip", got.Text)

	ch.dispatchPost(&tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 100},
		Document:  &tgbotapi.Document{FileID: "d1"},
	})
	require.NotNil(t, got.Media)
	assert.Equal(t, domain.MediaDocument, got.Media.Kind)
}

func TestDispatchPost_UnsupportedKindsKeepEmptyBody(t *testing.T) {
	ch := testChannel()

	var got domain.InboundPost
	ch.OnPost(func(post domain.InboundPost) { got = post })

	// An animation carries its caption separately; the post stays bodyless
	// and is rejected downstream.
	ch.dispatchPost(&tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 100},
		Animation: &tgbotapi.Animation{FileID: "a1"},
		Caption:   "gif caption",
	})

	assert.Nil(t, got.Media)
	assert.Empty(t, got.Text)
}

func TestDispatchCallback(t *testing.T) {
	ch := testChannel()

	var got domain.CallbackPress
	ch.OnCallback(func(press domain.CallbackPress) { got = press })

	ch.dispatchCallback(&tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: 42},
		Data: "pub:7",
		Message: &tgbotapi.Message{
			MessageID: 9,
			Chat:      &tgbotapi.Chat{ID: 100},
		},
	})

	assert.Equal(t, "cb-1", got.ID)
	assert.Equal(t, int64(100), got.ChatID)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, 9, got.MessageID)
	assert.Equal(t, "pub:7", got.Data)
}

func TestMarkup(t *testing.T) {
	kb := markup([][]domain.Button{
		{
			{Label: "🚀 Publish", Data: "pub:1"},
			{Label: "✖️ Cancel", Data: "cancel:1"},
		},
		{
			{Label: "✅ Subscribe", URL: "https://t.me/test"},
		},
	})

	require.Len(t, kb.InlineKeyboard, 2)
	require.Len(t, kb.InlineKeyboard[0], 2)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "pub:1", *kb.InlineKeyboard[0][0].CallbackData)
	require.NotNil(t, kb.InlineKeyboard[1][0].URL)
	assert.Equal(t, "https://t.me/test", *kb.InlineKeyboard[1][0].URL)
	assert.Nil(t, kb.InlineKeyboard[1][0].CallbackData)
}

func TestBaseChat(t *testing.T) {
	byID := baseChat(domain.ChatRef{ID: -1001234})
	assert.Equal(t, int64(-1001234), byID.ChatID)
	assert.Empty(t, byID.ChannelUsername)

	byName := baseChat(domain.ChatRef{Username: "@minsknews"})
	assert.Zero(t, byName.ChatID)
	assert.Equal(t, "@minsknews", byName.ChannelUsername)
}
