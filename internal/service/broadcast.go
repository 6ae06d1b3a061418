package service

import (
	"context"
	"time"

	"TR_telegram_taskbot/pkg/logger"

	"go.uber.org/zap"
)

const (
	broadcastBatchSize = 30
	broadcastPause     = 100 * time.Millisecond
)

type Broadcaster struct {
	users    UserRepository
	notifier Notifier
}

func NewBroadcaster(users UserRepository, notifier Notifier) *Broadcaster {
	return &Broadcaster{
		users:    users,
		notifier: notifier,
	}
}

// Broadcast sends the text to every known user in small batches with a pause
// between them to stay under platform rate limits. Per-user failures are
// counted, not fatal.
func (b *Broadcaster) Broadcast(ctx context.Context, text string) (int, int, error) {
	ids, err := b.users.ListUserIDs(ctx)
	if err != nil {
		return 0, 0, err
	}

	sent := 0
	for i := 0; i < len(ids); i += broadcastBatchSize {
		end := i + broadcastBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		for _, id := range ids[i:end] {
			if err := b.notifier.Notify(ctx, id, text); err != nil {
				logger.Logger().Warn("broadcast delivery failed",
					zap.Int64("telegram_id", id), zap.Error(err))
				continue
			}
			sent++
		}

		if end < len(ids) {
			select {
			case <-time.After(broadcastPause):
			case <-ctx.Done():
				return sent, len(ids), ctx.Err()
			}
		}
	}

	return sent, len(ids), nil
}
