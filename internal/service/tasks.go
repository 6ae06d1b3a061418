package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TR_telegram_taskbot/internal/cache"
	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/repository"

	"github.com/google/uuid"
)

// DetectTaskType classifies a submitted link. The hostname decides first;
// generic hosts fall back to path patterns; unparseable input falls back to
// prefix checks on the raw lowercased text.
func DetectTaskType(link string) model.TaskType {
	text := strings.ToLower(strings.TrimSpace(link))

	u, err := url.Parse(text)
	if err == nil && u.Host != "" {
		host := u.Hostname()
		switch {
		case strings.Contains(host, "t.me") || host == "telegram.org":
			return model.TaskTypeTelegram
		case strings.Contains(host, "twitter.com") || strings.Contains(host, "x.com"):
			return model.TaskTypeTwitter
		case strings.Contains(u.Path, "/intent/") || strings.Contains(u.Path, "/tweet"):
			return model.TaskTypeTwitter
		case strings.Contains(u.Path, "/telegram") || strings.Contains(u.Path, "/tg"):
			return model.TaskTypeTelegram
		}
		return model.TaskTypeOther
	}

	clean := strings.TrimPrefix(strings.TrimPrefix(text, "https://"), "http://")
	switch {
	case strings.HasPrefix(clean, "t.me/") || strings.HasPrefix(clean, "telegram."):
		return model.TaskTypeTelegram
	case strings.HasPrefix(clean, "twitter.com/") || strings.HasPrefix(clean, "x.com/"):
		return model.TaskTypeTwitter
	case strings.Contains(text, "x.com/intent/") || strings.Contains(text, "twitter.com/intent/"):
		return model.TaskTypeTwitter
	}

	return model.TaskTypeOther
}

// TargetChat extracts the "@channel" a telegram task points at, for the
// membership check.
func TargetChat(link string) string {
	text := strings.TrimSpace(link)
	u, err := url.Parse(text)
	if err != nil || u.Host == "" {
		return ""
	}
	if !strings.Contains(u.Hostname(), "t.me") {
		return ""
	}

	path := strings.Trim(u.Path, "/")
	if path == "" || strings.HasPrefix(path, "+") || strings.HasPrefix(path, "joinchat") {
		// Invite-hash links carry no public username to check against.
		return ""
	}
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		path = path[:idx]
	}

	return "@" + path
}

// ParseReward parses the reward entered at the creation wizard's final step.
// Rewards are positive integers.
func ParseReward(text string) (int, error) {
	reward, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || reward <= 0 {
		return 0, fmt.Errorf("invalid reward %q", text)
	}
	return reward, nil
}

// ParseTaskEdit parses the single-line admin edit format:
// title|description|link|reward|active. Wrong field count or a reward that is
// not a positive number is a reportable error, not applied.
func ParseTaskEdit(line string) (*model.TaskDraft, bool, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 5 {
		return nil, false, fmt.Errorf("%w: expected 5 fields separated by |, got %d", ErrMalformedEdit, len(fields))
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	reward, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, false, fmt.Errorf("%w: reward %q is not a number", ErrMalformedEdit, fields[3])
	}
	if reward <= 0 {
		return nil, false, fmt.Errorf("%w: reward must be positive, got %d", ErrMalformedEdit, reward)
	}

	draft := &model.TaskDraft{
		Title:       fields[0],
		Description: fields[1],
		Link:        fields[2],
		Reward:      reward,
		Type:        DetectTaskType(fields[2]),
	}
	active := strings.EqualFold(fields[4], "true")

	return draft, active, nil
}

type TaskService struct {
	repo    TaskRepository
	catalog *cache.TaskCatalog
}

func NewTaskService(repo TaskRepository, catalog *cache.TaskCatalog) *TaskService {
	return &TaskService{
		repo:    repo,
		catalog: catalog,
	}
}

// Create persists a finished draft as an active task and rebuilds the catalog
// snapshot from the store.
func (s *TaskService) Create(ctx context.Context, draft model.TaskDraft) (*model.Task, error) {
	task := &model.Task{
		ID:          uuid.New(),
		Title:       draft.Title,
		Description: draft.Description,
		Link:        draft.Link,
		Reward:      draft.Reward,
		Type:        draft.Type,
		Active:      true,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.catalog.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("failed to rebuild task catalog: %w", err)
	}

	return task, nil
}

// ApplyEdit parses the delimited edit line and applies it wholesale.
func (s *TaskService) ApplyEdit(ctx context.Context, taskID uuid.UUID, line string) (*model.Task, error) {
	draft, active, err := ParseTaskEdit(line)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = draft.Title
	task.Description = draft.Description
	task.Link = draft.Link
	task.Reward = draft.Reward
	task.Type = draft.Type
	task.Active = active

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	if err := s.catalog.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("failed to rebuild task catalog: %w", err)
	}

	return task, nil
}

// Deactivate is the soft removal path preferred for history integrity.
func (s *TaskService) Deactivate(ctx context.Context, taskID uuid.UUID) error {
	if err := s.repo.SetTaskActive(ctx, taskID, false); err != nil {
		return err
	}
	return s.catalog.Rebuild(ctx)
}

func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	return s.catalog.Rebuild(ctx)
}

func (s *TaskService) ActiveTasks() []*model.Task {
	return s.catalog.Active()
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	if t, ok := s.catalog.Get(id); ok {
		return t, nil
	}
	return s.repo.GetTaskByID(ctx, id)
}

func (s *TaskService) ListAll(ctx context.Context) ([]*model.Task, error) {
	return s.repo.ListAllTasks(ctx)
}

// SetActive flips a task's visibility without touching its history.
func (s *TaskService) SetActive(ctx context.Context, taskID uuid.UUID, active bool) error {
	if err := s.repo.SetTaskActive(ctx, taskID, active); err != nil {
		return err
	}
	return s.catalog.Rebuild(ctx)
}

func (s *TaskService) Stats(ctx context.Context) (*repository.TaskStats, error) {
	return s.repo.GetTaskStats(ctx)
}
