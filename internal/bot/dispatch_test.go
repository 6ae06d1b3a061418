package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func updateWithText(id int, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message:  &tgbotapi.Message{Text: text},
	}
}

func TestDispatcher_SerializesPerChat(t *testing.T) {
	var mu sync.Mutex
	handled := []string{}
	done := make(chan struct{}, 4)

	d := newDispatcher(func(_ context.Context, u tgbotapi.Update) {
		mu.Lock()
		handled = append(handled, u.Message.Text)
		mu.Unlock()
		done <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.enqueue(ctx, 1, updateWithText(1, "a1"))
	d.enqueue(ctx, 1, updateWithText(2, "a2"))
	d.enqueue(ctx, 2, updateWithText(3, "b1"))

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("update was not handled")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	// Chat 1's updates arrive in order regardless of chat 2's interleaving.
	var chat1 []string
	for _, text := range handled {
		if text == "a1" || text == "a2" {
			chat1 = append(chat1, text)
		}
	}
	assert.Equal(t, []string{"a1", "a2"}, chat1)
	assert.Equal(t, 2, d.len())
}

// Queues for chats that went quiet are evicted, worker included. A chat seen
// once must not pin a goroutine and a buffered channel forever.
func TestDispatcher_EvictsIdleQueues(t *testing.T) {
	done := make(chan struct{}, 1)
	d := newDispatcher(func(context.Context, tgbotapi.Update) {
		done <- struct{}{}
	})
	d.idleTimeout = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.enqueue(ctx, 1, updateWithText(1, "hello"))
	<-done
	assert.Equal(t, 1, d.len())

	assert.Eventually(t, func() bool { return d.len() == 0 },
		time.Second, 5*time.Millisecond, "idle queue is removed")

	// The chat coming back gets a fresh queue and worker.
	d.enqueue(ctx, 1, updateWithText(2, "again"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("update after eviction was not handled")
	}
	assert.Equal(t, 1, d.len())
}
