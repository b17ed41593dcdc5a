package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridiv/postbot/internal/domain"
)

// Entry is one published post in the history log.
type Entry struct {
	ID          string       `json:"id"`
	DraftID     int64        `json:"draftId"`
	AuthorID    int64        `json:"authorId"`
	Target      string       `json:"target"` // channel the post was delivered to
	Shape       domain.Shape `json:"shape"`
	MediaCount  int          `json:"mediaCount"`
	Caption     string       `json:"caption"`
	PublishedAt time.Time    `json:"publishedAt"`
}

// PostLog records successfully published posts for auditing.
type PostLog struct {
	db *DB
}

// NewPostLog creates a post log using the given database.
func NewPostLog(db *DB) *PostLog {
	return &PostLog{db: db}
}

// Record inserts one history entry. An empty id is assigned.
func (l *PostLog) Record(e Entry) (*Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.PublishedAt.IsZero() {
		e.PublishedAt = time.Now()
	}

	_, err := l.db.sql.Exec(
		`INSERT INTO published_posts (id, draft_id, author_id, target, shape, media_count, caption, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DraftID, e.AuthorID, e.Target, string(e.Shape),
		e.MediaCount, e.Caption, e.PublishedAt.Format(time.DateTime),
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Recent returns the most recent entries, newest first. Limit of 0
// defaults to 20.
func (l *PostLog) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.sql.Query(
		`SELECT id, draft_id, author_id, target, shape, media_count, caption, published_at
		 FROM published_posts
		 ORDER BY published_at DESC, id
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var shape, publishedAt string
		if err := rows.Scan(
			&e.ID, &e.DraftID, &e.AuthorID, &e.Target,
			&shape, &e.MediaCount, &e.Caption, &publishedAt,
		); err != nil {
			return nil, err
		}
		e.Shape = domain.Shape(shape)
		e.PublishedAt, _ = time.Parse(time.DateTime, publishedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of recorded publications.
func (l *PostLog) Count() (int, error) {
	var n int
	err := l.db.sql.QueryRow(`SELECT COUNT(*) FROM published_posts`).Scan(&n)
	return n, err
}
