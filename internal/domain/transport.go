package domain

import (
	"context"
	"strconv"
)

// ChatRef addresses a conversation or channel. Exactly one field is set:
// numeric id for user chats and private channels, @username for public ones.
type ChatRef struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

// ChatRefFrom parses an operator-supplied target like "@channel" or
// "-1001234567890" into a ChatRef. Anything non-numeric is treated as a
// username and gets the "@" prefix when missing.
func ChatRefFrom(s string) ChatRef {
	if s == "" {
		return ChatRef{}
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ChatRef{ID: id}
	}
	if s[0] != '@' {
		s = "@" + s
	}
	return ChatRef{Username: s}
}

// IsZero reports whether the reference addresses nothing.
func (r ChatRef) IsZero() bool { return r.ID == 0 && r.Username == "" }

// String returns the operator-facing form of the reference.
func (r ChatRef) String() string {
	if r.Username != "" {
		return r.Username
	}
	if r.ID == 0 {
		return ""
	}
	return strconv.FormatInt(r.ID, 10)
}

// MessageRef identifies a delivered message for later edits.
type MessageRef struct {
	Chat      ChatRef `json:"chat"`
	MessageID int     `json:"messageId"`
}

// Button is one inline keyboard button: either a URL link or a callback
// payload, never both.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
	Data  string `json:"data,omitempty"`
}

// SendOptions carries the optional knobs for text and media sends.
type SendOptions struct {
	Buttons   [][]Button // inline keyboard rows
	HTML      bool       // parse the body/caption as Telegram HTML
	NoPreview bool       // disable link previews on text messages
}

// Transport is the capability interface the core requires from the chat
// platform. Implementations live outside the core (internal/telegram); the
// publish state machine only ever talks to this.
type Transport interface {
	// SendText delivers a text message.
	SendText(ctx context.Context, to ChatRef, text string, opts SendOptions) (MessageRef, error)

	// SendMedia delivers one media item with an optional caption.
	SendMedia(ctx context.Context, to ChatRef, item MediaItem, caption string, opts SendOptions) (MessageRef, error)

	// SendMediaGroup delivers an ordered media set. The caption, if any,
	// attaches to the first item only; media sets cannot carry buttons.
	SendMediaGroup(ctx context.Context, to ChatRef, items []MediaItem, caption string) ([]MessageRef, error)

	// EditMessageText replaces the text of a previously sent message.
	EditMessageText(ctx context.Context, ref MessageRef, text string) error

	// AnswerCallback acknowledges a button press so the client stops spinning.
	AnswerCallback(ctx context.Context, callbackID string) error
}
