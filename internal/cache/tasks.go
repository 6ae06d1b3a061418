package cache

import (
	"context"
	"sync"
	"time"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const refreshInterval = 5 * time.Minute

type taskLister interface {
	ListActiveTasks(ctx context.Context) ([]*model.Task, error)
}

// TaskCatalog is a disposable snapshot of the active tasks. It is never the
// source of truth: every rebuild is a full re-query of the store.
type TaskCatalog struct {
	mu     sync.Mutex
	tasks  []*model.Task
	lister taskLister

	// OnRefresh runs after each periodic rebuild; the user cache reconcile
	// is coupled to it.
	OnRefresh func(ctx context.Context)
}

func NewTaskCatalog(lister taskLister) *TaskCatalog {
	return &TaskCatalog{lister: lister}
}

func (c *TaskCatalog) Rebuild(ctx context.Context) error {
	tasks, err := c.lister.ListActiveTasks(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()

	logger.Logger().Info("task catalog rebuilt", zap.Int("active_tasks", len(tasks)))
	return nil
}

func (c *TaskCatalog) Active() []*model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c *TaskCatalog) Get(id uuid.UUID) (*model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Run rebuilds the snapshot periodically until the context is cancelled.
func (c *TaskCatalog) Run(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Rebuild(ctx); err != nil {
				logger.Logger().Error("task catalog refresh failed", zap.Error(err))
				continue
			}
			if c.OnRefresh != nil {
				c.OnRefresh(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}
