package album

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridiv/postbot/internal/domain"
	"github.com/stridiv/postbot/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

// batchCollector records flushed batches for assertions.
type batchCollector struct {
	mu      sync.Mutex
	batches []Batch
}

func (c *batchCollector) flush(b Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, b)
}

func (c *batchCollector) snapshot() []Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Batch, len(c.batches))
	copy(out, c.batches)
	return out
}

func photoItem(chatID int64, msgID int, groupID, caption string) domain.InboundPost {
	return domain.InboundPost{
		ChatID:    chatID,
		UserID:    7,
		MessageID: msgID,
		Text:      caption,
		Media:     &domain.MediaItem{Kind: domain.MediaPhoto, FileID: "file-" + groupID},
		GroupID:   groupID,
	}
}

func waitForBatches(t *testing.T, c *batchCollector, n int, within time.Duration) []Batch {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if got := c.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := c.snapshot()
	require.Len(t, got, n, "expected %d batches within %v", n, within)
	return got
}

func TestFlushOrdersByMessageID(t *testing.T) {
	c := &batchCollector{}
	agg := New(30*time.Millisecond, c.flush, testLogger())

	// Deliver in a shuffled order; flush must sort by message id.
	ids := []int{104, 101, 103, 105, 102}
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	for _, id := range ids {
		post := photoItem(1, id, "g1", "")
		post.Media.FileID = "f-" + string(rune('0'+id-100))
		agg.Add(post)
	}

	batches := waitForBatches(t, c, 1, time.Second)
	require.Len(t, batches[0].Media, 5)
	assert.Equal(t, "f-1", batches[0].Media[0].FileID)
	assert.Equal(t, "f-5", batches[0].Media[4].FileID)
}

func TestDebounceSingleFlushAfterQuietPeriod(t *testing.T) {
	const window = 60 * time.Millisecond
	c := &batchCollector{}
	agg := New(window, c.flush, testLogger())

	agg.Add(photoItem(1, 1, "g1", ""))
	time.Sleep(window / 2)
	agg.Add(photoItem(1, 2, "g1", ""))
	time.Sleep(window * 9 / 10)
	lastAdd := time.Now()
	agg.Add(photoItem(1, 3, "g1", ""))

	batches := waitForBatches(t, c, 1, time.Second)
	elapsed := time.Since(lastAdd)

	require.Len(t, batches, 1, "restarted timer must produce exactly one flush")
	assert.Len(t, batches[0].Media, 3)
	assert.GreaterOrEqual(t, elapsed, window, "flush fired before the last item's quiet period")

	// No second flush shows up later.
	time.Sleep(2 * window)
	assert.Len(t, c.snapshot(), 1)
	assert.Zero(t, agg.Pending())
}

func TestCaptionFirstNonEmptyInSendOrder(t *testing.T) {
	c := &batchCollector{}
	agg := New(30*time.Millisecond, c.flush, testLogger())

	// Only the second item (by message id) carries a caption; deliver the
	// captioned one first to prove selection follows sorted order, not
	// arrival order.
	agg.Add(photoItem(1, 12, "g1", "the caption"))
	agg.Add(photoItem(1, 11, "g1", ""))
	agg.Add(photoItem(1, 13, "g1", "a later caption"))

	batches := waitForBatches(t, c, 1, time.Second)
	assert.Equal(t, "the caption", batches[0].Caption)
}

func TestGroupsAreIndependent(t *testing.T) {
	c := &batchCollector{}
	agg := New(30*time.Millisecond, c.flush, testLogger())

	agg.Add(photoItem(1, 1, "g1", ""))
	agg.Add(photoItem(1, 2, "g2", ""))
	agg.Add(photoItem(2, 3, "g1", "")) // same group id, different chat

	batches := waitForBatches(t, c, 3, time.Second)
	assert.Len(t, batches, 3)
	for _, b := range batches {
		assert.Len(t, b.Media, 1)
	}
}

func TestItemAfterFlushStartsFreshGroup(t *testing.T) {
	c := &batchCollector{}
	agg := New(20*time.Millisecond, c.flush, testLogger())

	agg.Add(photoItem(1, 1, "g1", ""))
	waitForBatches(t, c, 1, time.Second)

	agg.Add(photoItem(1, 2, "g1", ""))
	batches := waitForBatches(t, c, 2, time.Second)
	assert.Len(t, batches[1].Media, 1)
}

func TestIgnoresNonGroupAndTextItems(t *testing.T) {
	c := &batchCollector{}
	agg := New(20*time.Millisecond, c.flush, testLogger())

	agg.Add(domain.InboundPost{ChatID: 1, MessageID: 1, Text: "plain text"})
	agg.Add(photoItem(1, 2, "", "no group id"))
	assert.Zero(t, agg.Pending())
}

func TestConcurrentAddsSingleGroup(t *testing.T) {
	c := &batchCollector{}
	agg := New(40*time.Millisecond, c.flush, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			agg.Add(photoItem(1, 100+id, "g1", ""))
		}(i)
	}
	wg.Wait()

	batches := waitForBatches(t, c, 1, time.Second)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Media, 10)
}
