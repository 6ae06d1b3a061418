package cache

import (
	"context"
	"sync"
	"time"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/pkg/logger"

	"go.uber.org/zap"
)

const (
	// A cached user is served without a store round-trip for this long.
	Freshness = 30 * time.Second

	sweepInterval = time.Minute
)

type userEntry struct {
	user      *model.User
	fetchedAt time.Time
}

// UserCache is a read cache over the user directory. Callback interactions
// reuse any cached entry regardless of age: they always follow a recent
// message fetch and are the latency-sensitive path.
type UserCache struct {
	mu      sync.Mutex
	entries map[int64]userEntry
	now     func() time.Time
}

func NewUserCache() *UserCache {
	return &UserCache{
		entries: make(map[int64]userEntry),
		now:     time.Now,
	}
}

func NewUserCacheWithClock(now func() time.Time) *UserCache {
	c := NewUserCache()
	c.now = now
	return c
}

func (c *UserCache) Get(telegramID int64, callback bool) (*model.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[telegramID]
	if !ok {
		return nil, false
	}

	if callback || c.now().Sub(entry.fetchedAt) < Freshness {
		// The same user may be active in several chats at once, and chats
		// dispatch on parallel goroutines. Each caller gets its own copy so
		// handler mutations never race through a shared record.
		return entry.user.Clone(), true
	}

	return nil, false
}

func (c *UserCache) Set(user *model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.TelegramID] = userEntry{user: user.Clone(), fetchedAt: c.now()}
}

func (c *UserCache) Delete(telegramID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, telegramID)
}

// Sweep drops entries older than the freshness window.
func (c *UserCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for id, entry := range c.entries {
		if now.Sub(entry.fetchedAt) > Freshness {
			delete(c.entries, id)
			evicted++
		}
	}

	return evicted
}

// Reconcile re-fetches every cached user from the store so externally applied
// mutations (admin credits, concurrent sessions) converge into the cache.
func (c *UserCache) Reconcile(ctx context.Context, fetch func(context.Context, int64) (*model.User, error)) {
	c.mu.Lock()
	ids := make([]int64, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		fresh, err := fetch(ctx, id)
		if err != nil {
			logger.Logger().Warn("failed to refresh cached user",
				zap.Int64("telegram_id", id), zap.Error(err))
			continue
		}
		c.Set(fresh)
	}
}

// Run sweeps stale entries periodically until the context is cancelled.
func (c *UserCache) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
