package domain

// MediaKind discriminates the supported media variants.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

// MediaItem is one media reference: a kind plus the transport's opaque
// content handle (a Telegram file id).
type MediaItem struct {
	Kind   MediaKind `json:"kind"`
	FileID string    `json:"fileId"`
}
