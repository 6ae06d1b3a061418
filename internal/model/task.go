package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeTelegram TaskType = "telegram"
	TaskTypeTwitter  TaskType = "twitter"
	TaskTypeOther    TaskType = "other"
)

type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Link        string
	Reward      int
	Type        TaskType
	Active      bool
	CreatedAt   time.Time
}

// TaskDraft accumulates fields across the admin creation wizard.
type TaskDraft struct {
	Title       string
	Description string
	Link        string
	Reward      int
	Type        TaskType
}
