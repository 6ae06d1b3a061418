package service

import (
	"context"
	"errors"
	"testing"

	"TR_telegram_taskbot/internal/cache"
	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_Resolve(t *testing.T) {
	id := Identity{TelegramID: 100, Username: "alice", FirstName: "Alice"}

	t.Run("miss upserts and caches", func(t *testing.T) {
		stored := &model.User{TelegramID: 100, Username: "alice", Balance: 40}

		repo := &mocks.MockUserRepository{}
		repo.On("UpsertUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.TelegramID == 100 && u.TelegramUsername == "@alice"
		})).Return(stored, nil).Once()

		userCache := cache.NewUserCache()
		svc := NewUserService(repo, userCache)

		u := svc.Resolve(context.Background(), id, false)
		assert.Equal(t, stored, u)

		// The second resolve inside the freshness window is pure cache.
		u = svc.Resolve(context.Background(), id, false)
		assert.Equal(t, stored, u)
		repo.AssertNumberOfCalls(t, "UpsertUser", 1)
	})

	t.Run("store failure degrades to a temporary record", func(t *testing.T) {
		repo := &mocks.MockUserRepository{}
		repo.On("UpsertUser", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		userCache := cache.NewUserCache()
		svc := NewUserService(repo, userCache)

		u := svc.Resolve(context.Background(), id, false)
		assert.Equal(t, int64(100), u.TelegramID)
		assert.Equal(t, "alice", u.Username)
		assert.NotNil(t, u.CompletedTasks)

		// Degraded records are never cached: the next update retries the store.
		_, ok := userCache.Get(100, true)
		assert.False(t, ok)
	})
}

func TestUserService_RefreshAndInvalidate(t *testing.T) {
	stored := &model.User{TelegramID: 100, Balance: 75}

	repo := &mocks.MockUserRepository{}
	repo.On("GetUserByTelegramID", mock.Anything, int64(100)).Return(stored, nil)

	userCache := cache.NewUserCache()
	svc := NewUserService(repo, userCache)

	u, err := svc.Refresh(context.Background(), 100)
	assert.NoError(t, err)
	assert.Equal(t, 75, u.Balance)

	cached, ok := userCache.Get(100, false)
	assert.True(t, ok)
	assert.Equal(t, 75, cached.Balance)

	svc.Invalidate(100)
	_, ok = userCache.Get(100, true)
	assert.False(t, ok)
}
