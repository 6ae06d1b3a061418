package service

import (
	"context"
	"errors"
	"testing"

	"TR_telegram_taskbot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBroadcaster_Broadcast(t *testing.T) {
	t.Run("delivers to every user", func(t *testing.T) {
		ids := make([]int64, 65)
		for i := range ids {
			ids[i] = int64(i + 1)
		}

		users := &mocks.MockUserRepository{}
		users.On("ListUserIDs", mock.Anything).Return(ids, nil)

		notifier := &mocks.MockNotifier{}
		notifier.On("Notify", mock.Anything, mock.Anything, "hello").Return(nil).Times(65)

		b := NewBroadcaster(users, notifier)
		sent, total, err := b.Broadcast(context.Background(), "hello")
		assert.NoError(t, err)
		assert.Equal(t, 65, sent)
		assert.Equal(t, 65, total)
		notifier.AssertExpectations(t)
	})

	t.Run("per-user failures are counted, not fatal", func(t *testing.T) {
		users := &mocks.MockUserRepository{}
		users.On("ListUserIDs", mock.Anything).Return([]int64{1, 2, 3}, nil)

		notifier := &mocks.MockNotifier{}
		notifier.On("Notify", mock.Anything, int64(1), "hi").Return(nil)
		notifier.On("Notify", mock.Anything, int64(2), "hi").Return(errors.New("blocked by user"))
		notifier.On("Notify", mock.Anything, int64(3), "hi").Return(nil)

		b := NewBroadcaster(users, notifier)
		sent, total, err := b.Broadcast(context.Background(), "hi")
		assert.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, 3, total)
	})

	t.Run("cancellation stops between batches", func(t *testing.T) {
		ids := make([]int64, 60)
		for i := range ids {
			ids[i] = int64(i + 1)
		}

		users := &mocks.MockUserRepository{}
		users.On("ListUserIDs", mock.Anything).Return(ids, nil)

		ctx, cancel := context.WithCancel(context.Background())
		notifier := &mocks.MockNotifier{}
		notifier.On("Notify", mock.Anything, mock.Anything, "bye").
			Run(func(args mock.Arguments) { cancel() }).
			Return(nil)

		b := NewBroadcaster(users, notifier)
		sent, total, err := b.Broadcast(ctx, "bye")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 30, sent, "only the first batch goes out")
		assert.Equal(t, 60, total)
	})
}
