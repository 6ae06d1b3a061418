package service

import (
	"context"
	"fmt"
	"time"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompletionEvent is published to the admin live feed whenever a task is
// credited for the first time.
type CompletionEvent struct {
	UserTelegramID int64     `json:"user_telegram_id"`
	Username       string    `json:"username"`
	TaskID         uuid.UUID `json:"task_id"`
	TaskTitle      string    `json:"task_title"`
	Reward         int       `json:"reward"`
	CompletedAt    time.Time `json:"completed_at"`
}

type CompletionResult struct {
	Credited        bool
	Task            *model.Task
	FirstCompletion bool
}

type VerificationService struct {
	users     UserRepository
	tasks     *TaskService
	referrals *ReferralService
	checker   MembershipChecker

	events chan CompletionEvent
}

func NewVerificationService(users UserRepository, tasks *TaskService, referrals *ReferralService, checker MembershipChecker) *VerificationService {
	return &VerificationService{
		users:     users,
		tasks:     tasks,
		referrals: referrals,
		checker:   checker,
		events:    make(chan CompletionEvent, 64),
	}
}

// Events exposes the completion feed consumed by the admin websocket.
func (s *VerificationService) Events() <-chan CompletionEvent {
	return s.events
}

// VerifyMembership checks the user's status in the task's target chat.
// Anything other than member/administrator/creator is a rejection with no
// state mutation.
func (s *VerificationService) VerifyMembership(ctx context.Context, chat string, telegramID int64) error {
	status, err := s.checker.GetChatMemberStatus(ctx, chat, telegramID)
	if err != nil {
		return fmt.Errorf("failed to query chat member status: %w", err)
	}

	switch status {
	case "member", "administrator", "creator":
		return nil
	default:
		return ErrNotMember
	}
}

// CompleteTask credits the reward idempotently. The first-ever completion of
// any task also settles the user's referral edge.
func (s *VerificationService) CompleteTask(ctx context.Context, user *model.User, taskID uuid.UUID) (*CompletionResult, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	if !task.Active {
		return nil, ErrTaskNotFound
	}

	credited, totalCompleted, err := s.users.CreditTaskCompletion(ctx, user.TelegramID, taskID, task.Reward)
	if err != nil {
		return nil, fmt.Errorf("failed to credit task completion: %w", err)
	}

	result := &CompletionResult{
		Credited:        credited,
		Task:            task,
		FirstCompletion: credited && totalCompleted == 1,
	}
	if !credited {
		return result, nil
	}

	user.Balance += task.Reward
	user.CompletedTasks = append(user.CompletedTasks, taskID)

	if result.FirstCompletion && user.ReferredBy != nil {
		if err := s.referrals.CompleteReferral(ctx, user); err != nil {
			logger.Logger().Error("referral completion failed",
				zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		}
	}

	select {
	case s.events <- CompletionEvent{
		UserTelegramID: user.TelegramID,
		Username:       user.Username,
		TaskID:         task.ID,
		TaskTitle:      task.Title,
		Reward:         task.Reward,
		CompletedAt:    time.Now(),
	}:
	default:
		// Feed consumers are best-effort; never block crediting on them.
	}

	return result, nil
}
