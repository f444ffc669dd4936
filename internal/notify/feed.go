// Package notify holds the short list of user-visible events.
package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/scheduler"
	"go.uber.org/zap"
)

const (
	DefaultCapacity = 5
	DefaultTTL      = 8 * time.Second
)

type Options struct {
	Capacity int
	TTL      time.Duration
	Logger   *zap.Logger
}

// Feed keeps the most recent notifications, newest first. Non-alert entries
// expire after TTL through the scheduler engine; alerts stay until their
// quest is cleared.
type Feed struct {
	mu       sync.Mutex
	items    []model.Notification
	capacity int
	ttl      time.Duration
	engine   *scheduler.Engine
	logger   *zap.Logger
	subs     []chan struct{}
	now      func() time.Time
	newID    func() string
}

func NewFeed(engine *scheduler.Engine, opts Options) *Feed {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Feed{
		items:    make([]model.Notification, 0, opts.Capacity),
		capacity: opts.Capacity,
		ttl:      opts.TTL,
		engine:   engine,
		logger:   opts.Logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Notify builds and pushes a notification.
func (f *Feed) Notify(questID, title, message string, typ model.NotificationType) model.Notification {
	return f.Push(model.Notification{
		QuestID: questID,
		Title:   title,
		Message: message,
		Type:    typ,
	})
}

// Push prepends n, evicting the oldest entry beyond capacity.
func (f *Feed) Push(n model.Notification) model.Notification {
	if strings.TrimSpace(n.ID) == "" {
		n.ID = f.newID()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = f.now()
	}
	if !n.Type.IsValid() {
		n.Type = model.NotificationInfo
	}

	f.mu.Lock()
	f.items = append([]model.Notification{n}, f.items...)
	if len(f.items) > f.capacity {
		f.items = f.items[:f.capacity]
	}
	f.mu.Unlock()

	if n.Type.Expires() && f.engine != nil {
		if err := f.engine.After(scheduler.Event{ID: n.ID, Key: n.QuestID}, f.ttl); err != nil {
			f.logger.Warn("notification expiry not scheduled", zap.String("id", n.ID), zap.Error(err))
		}
	}
	f.logger.Debug("notification pushed",
		zap.String("id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("quest_id", n.QuestID))
	f.broadcast()
	return n
}

// Remove deletes a single entry by id.
func (f *Feed) Remove(id string) bool {
	f.mu.Lock()
	removed := false
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			removed = true
			break
		}
	}
	f.mu.Unlock()
	if removed {
		f.broadcast()
	}
	return removed
}

// ClearQuest removes every entry owned by questID and cancels their timers.
func (f *Feed) ClearQuest(questID string) int {
	if strings.TrimSpace(questID) == "" {
		return 0
	}
	f.mu.Lock()
	kept := f.items[:0:0]
	removed := 0
	for _, n := range f.items {
		if n.QuestID == questID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	f.items = kept
	f.mu.Unlock()

	if f.engine != nil {
		f.engine.Cancel(questID)
	}
	if removed > 0 {
		f.broadcast()
	}
	return removed
}

func (f *Feed) Items() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce; a reader that falls behind sees one pending signal.
func (f *Feed) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()
	return ch
}

// Run removes entries as their expiry events arrive. It returns when ctx is
// done or the engine channel closes.
func (f *Feed) Run(ctx context.Context) {
	if f.engine == nil {
		return
	}
	events := f.engine.C()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if f.Remove(ev.ID) {
				f.logger.Debug("notification expired", zap.String("id", ev.ID))
			}
		}
	}
}

func (f *Feed) broadcast() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
