// Package album coalesces Telegram media-group items into ordered batches.
//
// Items of one media group arrive as independent messages with no
// end-of-group marker, in no guaranteed order. The aggregator buffers them
// per group and restarts a quiet-period timer on every arrival; when the
// timer finally fires the group is complete.
package album

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stridiv/postbot/internal/domain"
	"github.com/stridiv/postbot/internal/logging"
)

// Batch is one fully collected media group, ready for draft construction.
type Batch struct {
	ChatID  int64
	UserID  int64
	Caption string // first non-empty caption in send order
	Media   []domain.MediaItem
}

// Aggregator buffers media-group items and flushes each group once its
// debounce window elapses without a new arrival.
type Aggregator struct {
	window time.Duration
	flush  func(Batch)
	log    *logging.Logger

	mu     sync.Mutex
	groups map[string]*group
}

type group struct {
	items []domain.InboundPost
	timer *time.Timer
}

// New creates an aggregator. The flush callback receives each completed
// batch; it runs on the timer goroutine.
func New(window time.Duration, flush func(Batch), log *logging.Logger) *Aggregator {
	if window <= 0 {
		window = 1200 * time.Millisecond
	}
	return &Aggregator{
		window: window,
		flush:  flush,
		log:    log.Sub("album"),
		groups: make(map[string]*group),
	}
}

// Add buffers one media-group item and restarts the group's flush timer.
// Items without media are ignored.
func (a *Aggregator) Add(post domain.InboundPost) {
	if post.Media == nil || post.GroupID == "" {
		return
	}
	key := groupKey(post.ChatID, post.GroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	g := a.groups[key]
	if g == nil {
		g = &group{}
		a.groups[key] = g
	}
	g.items = append(g.items, post)

	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(a.window, func() { a.flushGroup(key) })

	a.log.Debug().
		Str("key", key).
		Int("items", len(g.items)).
		Msg("media group item buffered")
}

// Pending returns the number of groups currently being collected.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

// flushGroup atomically takes the buffered entry for key and emits a batch.
// A group that raced away (already flushed, or an Add re-armed the timer
// after this fire was scheduled) is a no-op; items added after removal
// start a fresh group.
func (a *Aggregator) flushGroup(key string) {
	a.mu.Lock()
	g := a.groups[key]
	delete(a.groups, key)
	a.mu.Unlock()

	if g == nil || len(g.items) == 0 {
		return
	}

	items := g.items
	sort.Slice(items, func(i, j int) bool {
		return items[i].MessageID < items[j].MessageID
	})

	batch := Batch{
		ChatID: items[0].ChatID,
		UserID: items[0].UserID,
		Media:  make([]domain.MediaItem, 0, len(items)),
	}
	for _, it := range items {
		if batch.Caption == "" && it.Text != "" {
			batch.Caption = it.Text
		}
		batch.Media = append(batch.Media, *it.Media)
	}

	a.log.Info().
		Str("key", key).
		Int("items", len(batch.Media)).
		Msg("media group complete")

	a.flush(batch)
}

func groupKey(chatID int64, groupID string) string {
	return fmt.Sprintf("%d:%s", chatID, groupID)
}
