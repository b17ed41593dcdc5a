package domain

// InboundPost is a composable message received from an operator: plain text,
// or a single media item with an optional caption. Media that belongs to a
// Telegram media group carries the shared GroupID.
type InboundPost struct {
	ChatID    int64      `json:"chatId"`
	UserID    int64      `json:"userId"`
	MessageID int        `json:"messageId"` // transport-assigned, monotonic per chat
	Text      string     `json:"text"`      // message text, or media caption
	Media     *MediaItem `json:"media,omitempty"`
	GroupID   string     `json:"groupId,omitempty"`
}

// CallbackPress is an inline-button press on a preview control message.
type CallbackPress struct {
	ID        string `json:"id"` // callback query id, used for the transport ack
	ChatID    int64  `json:"chatId"`
	UserID    int64  `json:"userId"`
	MessageID int    `json:"messageId"` // message carrying the pressed button
	Data      string `json:"data"`      // opaque payload, e.g. "pub:42"
}
