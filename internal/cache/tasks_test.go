package cache

import (
	"context"
	"errors"
	"testing"

	"TR_telegram_taskbot/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubLister struct {
	tasks []*model.Task
	err   error
	calls int
}

func (s *stubLister) ListActiveTasks(ctx context.Context) ([]*model.Task, error) {
	s.calls++
	return s.tasks, s.err
}

func TestTaskCatalog_Rebuild(t *testing.T) {
	taskA := &model.Task{ID: uuid.New(), Title: "A"}
	taskB := &model.Task{ID: uuid.New(), Title: "B"}

	lister := &stubLister{tasks: []*model.Task{taskA}}
	c := NewTaskCatalog(lister)

	assert.Empty(t, c.Active(), "empty until the first rebuild")

	assert.NoError(t, c.Rebuild(context.Background()))
	assert.Equal(t, []*model.Task{taskA}, c.Active())

	got, ok := c.Get(taskA.ID)
	assert.True(t, ok)
	assert.Equal(t, "A", got.Title)

	_, ok = c.Get(taskB.ID)
	assert.False(t, ok)

	// Every rebuild is a full re-query; removed tasks vanish.
	lister.tasks = []*model.Task{taskB}
	assert.NoError(t, c.Rebuild(context.Background()))
	assert.Equal(t, []*model.Task{taskB}, c.Active())
	_, ok = c.Get(taskA.ID)
	assert.False(t, ok)
	assert.Equal(t, 2, lister.calls)
}

func TestTaskCatalog_RebuildFailureKeepsSnapshot(t *testing.T) {
	task := &model.Task{ID: uuid.New()}
	lister := &stubLister{tasks: []*model.Task{task}}
	c := NewTaskCatalog(lister)
	assert.NoError(t, c.Rebuild(context.Background()))

	lister.err = errors.New("store unavailable")
	assert.Error(t, c.Rebuild(context.Background()))
	assert.Equal(t, []*model.Task{task}, c.Active(), "a failed rebuild keeps the old snapshot")
}

func TestTaskCatalog_ActiveReturnsCopy(t *testing.T) {
	lister := &stubLister{tasks: []*model.Task{{ID: uuid.New()}, {ID: uuid.New()}}}
	c := NewTaskCatalog(lister)
	assert.NoError(t, c.Rebuild(context.Background()))

	snapshot := c.Active()
	snapshot[0] = nil
	assert.NotNil(t, c.Active()[0], "callers cannot corrupt the shared snapshot")
}
