package service

import (
	"context"
	"errors"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrNotMember           = errors.New("membership requirement not met")
	ErrBelowMinWithdraw    = errors.New("amount below minimum withdrawal")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrProfileIncomplete   = errors.New("profile not completed")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found or already resolved")
	ErrMalformedEdit       = errors.New("malformed task edit")
)

type UserRepository interface {
	UpsertUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	UpdateTelegramUsername(ctx context.Context, telegramID int64, handle string) error
	UpdateTwitterUsername(ctx context.Context, telegramID int64, handle string) error
	CompleteProfile(ctx context.Context, telegramID int64, walletAddress string, referredBy *int64) error
	IncrementBalance(ctx context.Context, telegramID int64, amount int) error
	CreditTaskCompletion(ctx context.Context, telegramID int64, taskID uuid.UUID, reward int) (bool, int, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	GetUserStats(ctx context.Context) (*repository.UserStats, error)
}

type ReferralRepository interface {
	AddReferralEdge(ctx context.Context, edge *model.ReferralEdge) (bool, error)
	GetReferralEdges(ctx context.Context, referrerID int64) ([]*model.ReferralEdge, error)
	CompleteReferralEdge(ctx context.Context, inviteeID int64) (int64, bool, error)
}

type TaskRepository interface {
	CreateTask(ctx context.Context, t *model.Task) error
	GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListActiveTasks(ctx context.Context) ([]*model.Task, error)
	ListAllTasks(ctx context.Context) ([]*model.Task, error)
	UpdateTask(ctx context.Context, t *model.Task) error
	SetTaskActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
	GetTaskStats(ctx context.Context) (*repository.TaskStats, error)
}

type WithdrawalRepository interface {
	CreateWithdrawal(ctx context.Context, w *model.Withdrawal) error
	GetLastWithdrawal(ctx context.Context, telegramID int64) (*model.Withdrawal, error)
	ListWithdrawals(ctx context.Context, telegramID int64) ([]*model.Withdrawal, error)
	ListPendingWithdrawals(ctx context.Context) ([]*model.Withdrawal, error)
	ResolveWithdrawal(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus) error
}

type SettingsRepository interface {
	LoadSettings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Notifier delivers a plain message to a chat. The bot client satisfies it;
// tests substitute a mock.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// MembershipChecker asks the platform for a user's status in a chat.
type MembershipChecker interface {
	GetChatMemberStatus(ctx context.Context, chat string, userID int64) (string, error)
}
