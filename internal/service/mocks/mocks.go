package mocks

import (
	"context"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) UpsertUser(ctx context.Context, u *model.User) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateTelegramUsername(ctx context.Context, telegramID int64, handle string) error {
	args := m.Called(ctx, telegramID, handle)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateTwitterUsername(ctx context.Context, telegramID int64, handle string) error {
	args := m.Called(ctx, telegramID, handle)
	return args.Error(0)
}

func (m *MockUserRepository) CompleteProfile(ctx context.Context, telegramID int64, walletAddress string, referredBy *int64) error {
	args := m.Called(ctx, telegramID, walletAddress, referredBy)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementBalance(ctx context.Context, telegramID int64, amount int) error {
	args := m.Called(ctx, telegramID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) CreditTaskCompletion(ctx context.Context, telegramID int64, taskID uuid.UUID, reward int) (bool, int, error) {
	args := m.Called(ctx, telegramID, taskID, reward)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockUserRepository) GetUserStats(ctx context.Context) (*repository.UserStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UserStats), args.Error(1)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) AddReferralEdge(ctx context.Context, edge *model.ReferralEdge) (bool, error) {
	args := m.Called(ctx, edge)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferralRepository) GetReferralEdges(ctx context.Context, referrerID int64) ([]*model.ReferralEdge, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ReferralEdge), args.Error(1)
}

func (m *MockReferralRepository) CompleteReferralEdge(ctx context.Context, inviteeID int64) (int64, bool, error) {
	args := m.Called(ctx, inviteeID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, t *model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListActiveTasks(ctx context.Context) ([]*model.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListAllTasks(ctx context.Context) ([]*model.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, t *model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) SetTaskActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) GetTaskStats(ctx context.Context) (*repository.TaskStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.TaskStats), args.Error(1)
}

type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) CreateWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetLastWithdrawal(ctx context.Context, telegramID int64) (*model.Withdrawal, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ListWithdrawals(ctx context.Context, telegramID int64) ([]*model.Withdrawal, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ListPendingWithdrawals(ctx context.Context) ([]*model.Withdrawal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ResolveWithdrawal(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) LoadSettings(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockSettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

type MockMembershipChecker struct {
	mock.Mock
}

func (m *MockMembershipChecker) GetChatMemberStatus(ctx context.Context, chat string, userID int64) (string, error) {
	args := m.Called(ctx, chat, userID)
	return args.String(0), args.Error(1)
}
