package domain

// Shape classifies how a draft renders and publishes.
type Shape string

const (
	ShapeText   Shape = "text"
	ShapeSingle Shape = "single"
	ShapeAlbum  Shape = "album"
)

// Draft is an operator-composed, not-yet-published post. It lives in the
// draft store between preview and the operator's confirm/cancel decision.
type Draft struct {
	ID     int64       `json:"id"`
	ChatID int64       `json:"chatId"` // conversation where the preview was shown
	UserID int64       `json:"userId"` // operator who composed it
	Text   string      `json:"text"`
	Media  []MediaItem `json:"media,omitempty"`
}

// Shape returns the rendering shape: zero media items is a text-only post,
// one is a single-media post, two or more is an album.
func (d *Draft) Shape() Shape {
	switch {
	case len(d.Media) >= 2:
		return ShapeAlbum
	case len(d.Media) == 1:
		return ShapeSingle
	default:
		return ShapeText
	}
}
