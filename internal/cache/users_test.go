package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TR_telegram_taskbot/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserCache_Freshness(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := NewUserCacheWithClock(clock)

	c.Set(&model.User{TelegramID: 100, Username: "alice"})

	u, ok := c.Get(100, false)
	assert.True(t, ok)
	assert.Equal(t, "alice", u.Username)

	// Just inside the window.
	now = now.Add(Freshness - time.Second)
	_, ok = c.Get(100, false)
	assert.True(t, ok)

	// Past the window a message fetch misses.
	now = now.Add(2 * time.Second)
	_, ok = c.Get(100, false)
	assert.False(t, ok)
}

func TestUserCache_CallbackBypassesFreshness(t *testing.T) {
	now := time.Now()
	c := NewUserCacheWithClock(func() time.Time { return now })

	c.Set(&model.User{TelegramID: 100})

	now = now.Add(10 * Freshness)
	_, ok := c.Get(100, true)
	assert.True(t, ok, "callbacks reuse any cached entry regardless of age")

	c.Delete(100)
	_, ok = c.Get(100, true)
	assert.False(t, ok, "bypass never resurrects a deleted entry")
}

func TestUserCache_Sweep(t *testing.T) {
	now := time.Now()
	c := NewUserCacheWithClock(func() time.Time { return now })

	c.Set(&model.User{TelegramID: 1})
	c.Set(&model.User{TelegramID: 2})

	now = now.Add(Freshness + time.Second)
	c.Set(&model.User{TelegramID: 3})

	assert.Equal(t, 2, c.Sweep())

	_, ok := c.Get(3, false)
	assert.True(t, ok)
	_, ok = c.Get(1, true)
	assert.False(t, ok, "swept entries are gone even for callbacks")
}

func TestUserCache_Reconcile(t *testing.T) {
	c := NewUserCache()
	c.Set(&model.User{TelegramID: 1, Balance: 10})
	c.Set(&model.User{TelegramID: 2, Balance: 20})

	fetch := func(ctx context.Context, id int64) (*model.User, error) {
		if id == 2 {
			return nil, errors.New("store unavailable")
		}
		return &model.User{TelegramID: id, Balance: 999}, nil
	}

	c.Reconcile(context.Background(), fetch)

	u, ok := c.Get(1, false)
	assert.True(t, ok)
	assert.Equal(t, 999, u.Balance, "external mutations converge into the cache")

	u, ok = c.Get(2, false)
	assert.True(t, ok)
	assert.Equal(t, 20, u.Balance, "failed refreshes keep the stale entry")
}

// Two chats can resolve the same user on parallel dispatch goroutines, so
// every Get must hand out an independent record.
func TestUserCache_GetReturnsCopy(t *testing.T) {
	c := NewUserCache()
	taskID := uuid.New()
	c.Set(&model.User{TelegramID: 100, Balance: 50, CompletedTasks: []uuid.UUID{taskID}})

	u1, ok := c.Get(100, false)
	assert.True(t, ok)
	u2, ok := c.Get(100, false)
	assert.True(t, ok)
	assert.NotSame(t, u1, u2)

	u1.Balance += 25
	u1.CompletedTasks = append(u1.CompletedTasks, uuid.New())
	assert.Equal(t, 50, u2.Balance)
	assert.Len(t, u2.CompletedTasks, 1)

	cached, ok := c.Get(100, false)
	assert.True(t, ok)
	assert.Equal(t, 50, cached.Balance, "caller mutations never reach the cached record")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, _ := c.Get(100, true)
			u.Balance++
		}()
	}
	wg.Wait()
}

func TestUserCache_SetStoresCopy(t *testing.T) {
	c := NewUserCache()
	original := &model.User{TelegramID: 100, Balance: 10}
	c.Set(original)

	original.Balance = 9999

	cached, ok := c.Get(100, false)
	assert.True(t, ok)
	assert.Equal(t, 10, cached.Balance)
}
