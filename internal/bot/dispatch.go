package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	chatQueueDepth = 16

	// An idle chat keeps its queue and worker this long after the last
	// update, then the worker removes the queue and exits.
	queueIdleTimeout = 10 * time.Minute
)

// dispatcher serializes updates per chat. Each chat gets one queue and one
// worker goroutine, so two rapid wizard messages from the same user can never
// overtake each other, while different chats proceed in parallel.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64]chan tgbotapi.Update
	wg     sync.WaitGroup
	handle func(context.Context, tgbotapi.Update)

	idleTimeout time.Duration
}

func newDispatcher(handle func(context.Context, tgbotapi.Update)) *dispatcher {
	return &dispatcher{
		queues:      make(map[int64]chan tgbotapi.Update),
		handle:      handle,
		idleTimeout: queueIdleTimeout,
	}
}

func (d *dispatcher) enqueue(ctx context.Context, chatID int64, update tgbotapi.Update) {
	d.mu.Lock()
	queue, ok := d.queues[chatID]
	if !ok {
		queue = make(chan tgbotapi.Update, chatQueueDepth)
		d.queues[chatID] = queue
		d.wg.Add(1)
		go d.drain(ctx, chatID, queue)
	}

	// Fast path: send while holding the lock, so the idle worker's
	// empty-queue check under the same lock can never miss an update.
	select {
	case queue <- update:
		d.mu.Unlock()
		return
	default:
	}
	d.mu.Unlock()

	// Buffer full. The worker is busy and cannot evict a non-empty queue,
	// so blocking outside the lock is safe.
	select {
	case queue <- update:
	case <-ctx.Done():
	}
}

func (d *dispatcher) drain(ctx context.Context, chatID int64, queue chan tgbotapi.Update) {
	defer d.wg.Done()

	idle := time.NewTimer(d.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case update := <-queue:
			d.handle(ctx, update)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(d.idleTimeout)
		case <-idle.C:
			d.mu.Lock()
			if len(queue) > 0 {
				d.mu.Unlock()
				idle.Reset(d.idleTimeout)
				continue
			}
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		case <-ctx.Done():
			return
		}
	}
}

func (d *dispatcher) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

func (d *dispatcher) wait() {
	d.wg.Wait()
}
