package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

const (
	QueueCapacity = 50
	queueKey      = "notifications"
)

// Queue holds surfaced notifications, most recent first, capped at
// QueueCapacity. Dismissed entries stay until ClearAll.
type Queue struct {
	kv  storage.KV
	log *slog.Logger

	mu    sync.Mutex
	items []model.Notification
}

// NewQueue restores the persisted queue. Unreadable state yields an empty queue.
func NewQueue(ctx context.Context, kv storage.KV, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	q := &Queue{kv: kv, log: log}

	var stored []model.Notification
	if _, err := storage.GetJSON(ctx, kv, queueKey, &stored); err != nil {
		log.Warn("notification queue unreadable, starting empty", "key", queueKey, "error", err)
		return q
	}
	for _, n := range stored {
		if err := n.Validate(); err != nil {
			log.Warn("dropping invalid stored notification", "id", n.ID, "error", err)
			continue
		}
		q.items = append(q.items, n)
		if len(q.items) == QueueCapacity {
			break
		}
	}
	return q
}

func (q *Queue) Add(ctx context.Context, n model.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append([]model.Notification{n}, q.items...)
	if len(q.items) > QueueCapacity {
		q.items = q.items[:QueueCapacity]
	}
	q.persistLocked(ctx)
}

func (q *Queue) Dismiss(ctx context.Context, id string) bool {
	return q.mutate(ctx, id, func(n *model.Notification) { n.Dismissed = true })
}

func (q *Queue) MarkRead(ctx context.Context, id string) bool {
	return q.mutate(ctx, id, func(n *model.Notification) { n.Read = true })
}

func (q *Queue) MarkAllRead(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	changed := 0
	for i := range q.items {
		if !q.items[i].Read && !q.items[i].Dismissed {
			q.items[i].Read = true
			changed++
		}
	}
	if changed > 0 {
		q.persistLocked(ctx)
	}
	return changed
}

func (q *Queue) ClearAll(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.persistLocked(ctx)
}

func (q *Queue) UnreadCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	count := 0
	for _, n := range q.items {
		if !n.Read && !n.Dismissed {
			count++
		}
	}
	return count
}

// Visible returns the non-dismissed notifications, most recent first.
func (q *Queue) Visible() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.Notification, 0, len(q.items))
	for _, n := range q.items {
		if !n.Dismissed {
			out = append(out, n)
		}
	}
	return out
}

// Len counts every stored entry, dismissed ones included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) mutate(ctx context.Context, id string, fn func(*model.Notification)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			fn(&q.items[i])
			q.persistLocked(ctx)
			return true
		}
	}
	return false
}

func (q *Queue) persistLocked(ctx context.Context) {
	items := q.items
	if items == nil {
		items = []model.Notification{}
	}
	if err := storage.SetJSON(ctx, q.kv, queueKey, items); err != nil {
		q.log.Warn("notification queue not saved", "key", queueKey, "error", err)
	}
}
