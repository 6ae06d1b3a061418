package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TR_telegram_taskbot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type task struct {
	ID          uuid.UUID `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Link        string    `db:"link"`
	Reward      int       `db:"reward"`
	Type        string    `db:"type"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
}

func (t *task) toModel() *model.Task {
	return &model.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Link:        t.Link,
		Reward:      t.Reward,
		Type:        model.TaskType(t.Type),
		Active:      t.Active,
		CreatedAt:   t.CreatedAt,
	}
}

func (r *Repository) CreateTask(ctx context.Context, t *model.Task) error {
	query, args, err := squirrel.
		Insert("tasks").
		SetMap(map[string]interface{}{
			"id":          t.ID,
			"title":       t.Title,
			"description": t.Description,
			"link":        t.Link,
			"reward":      t.Reward,
			"type":        string(t.Type),
			"active":      t.Active,
			"created_at":  t.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

func (r *Repository) GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	query, args, err := squirrel.
		Select("id", "title", "description", "link", "reward", "type", "active", "created_at").
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var t task
	err = r.db.GetContext(ctx, &t, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return t.toModel(), nil
}

func (r *Repository) ListActiveTasks(ctx context.Context) ([]*model.Task, error) {
	return r.listTasks(ctx, squirrel.Eq{"active": true})
}

func (r *Repository) ListAllTasks(ctx context.Context) ([]*model.Task, error) {
	return r.listTasks(ctx, nil)
}

func (r *Repository) listTasks(ctx context.Context, pred interface{}) ([]*model.Task, error) {
	builder := squirrel.
		Select("id", "title", "description", "link", "reward", "type", "active", "created_at").
		From("tasks").
		OrderBy("created_at")
	if pred != nil {
		builder = builder.Where(pred)
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*task
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*model.Task, len(rows))
	for i, t := range rows {
		tasks[i] = t.toModel()
	}

	return tasks, nil
}

// UpdateTask applies an admin edit wholesale: every editable field is replaced.
func (r *Repository) UpdateTask(ctx context.Context, t *model.Task) error {
	query, args, err := squirrel.
		Update("tasks").
		SetMap(map[string]interface{}{
			"title":       t.Title,
			"description": t.Description,
			"link":        t.Link,
			"reward":      t.Reward,
			"type":        string(t.Type),
			"active":      t.Active,
		}).
		Where(squirrel.Eq{"id": t.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *Repository) SetTaskActive(ctx context.Context, id uuid.UUID, active bool) error {
	query, args, err := squirrel.
		Update("tasks").
		Set("active", active).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	query, args, err := squirrel.
		Delete("tasks").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}

type TaskStats struct {
	TotalTasks       int `db:"total_tasks"`
	ActiveTasks      int `db:"active_tasks"`
	TotalCompletions int `db:"total_completions"`
}

func (r *Repository) GetTaskStats(ctx context.Context) (*TaskStats, error) {
	query := `SELECT
		(SELECT count(*) FROM tasks) as total_tasks,
		(SELECT count(*) FROM tasks WHERE active) as active_tasks,
		(SELECT count(*) FROM completed_tasks) as total_completions`

	var stats TaskStats
	err := r.db.GetContext(ctx, &stats, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get task stats: %w", err)
	}

	return &stats, nil
}
