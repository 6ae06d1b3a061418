package service

import (
	"context"
	"errors"
	"testing"

	"TR_telegram_taskbot/internal/cache"
	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestVerificationService_VerifyMembership(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		statusErr error
		wantErr   error
	}{
		{"member passes", "member", nil, nil},
		{"administrator passes", "administrator", nil, nil},
		{"creator passes", "creator", nil, nil},
		{"left is rejected", "left", nil, ErrNotMember},
		{"kicked is rejected", "kicked", nil, ErrNotMember},
		{"restricted is rejected", "restricted", nil, ErrNotMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &mocks.MockMembershipChecker{}
			checker.On("GetChatMemberStatus", mock.Anything, "@chan", int64(100)).
				Return(tt.status, tt.statusErr)

			svc := NewVerificationService(&mocks.MockUserRepository{}, nil, nil, checker)
			err := svc.VerifyMembership(context.Background(), "@chan", 100)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("lookup failure is not a rejection", func(t *testing.T) {
		checker := &mocks.MockMembershipChecker{}
		checker.On("GetChatMemberStatus", mock.Anything, "@chan", int64(100)).
			Return("", errors.New("api down"))

		svc := NewVerificationService(&mocks.MockUserRepository{}, nil, nil, checker)
		err := svc.VerifyMembership(context.Background(), "@chan", 100)
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotMember))
	})
}

func TestVerificationService_CompleteTask(t *testing.T) {
	taskID := uuid.New()
	activeTask := &model.Task{ID: taskID, Title: "Join", Reward: 25, Active: true, Type: model.TaskTypeTelegram}

	newTaskService := func(taskRepo *mocks.MockTaskRepository) *TaskService {
		return NewTaskService(taskRepo, cache.NewTaskCatalog(taskRepo))
	}

	t.Run("inactive task is not creditable", func(t *testing.T) {
		taskRepo := &mocks.MockTaskRepository{}
		taskRepo.On("GetTaskByID", mock.Anything, taskID).
			Return(&model.Task{ID: taskID, Active: false}, nil)

		svc := NewVerificationService(&mocks.MockUserRepository{}, newTaskService(taskRepo), nil, nil)
		_, err := svc.CompleteTask(context.Background(), &model.User{TelegramID: 100}, taskID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("first completion credits and settles the referral", func(t *testing.T) {
		referrerID := int64(555)

		taskRepo := &mocks.MockTaskRepository{}
		taskRepo.On("GetTaskByID", mock.Anything, taskID).Return(activeTask, nil)

		userRepo := &mocks.MockUserRepository{}
		userRepo.On("CreditTaskCompletion", mock.Anything, int64(100), taskID, 25).
			Return(true, 1, nil).Once()

		edgeRepo := &mocks.MockReferralRepository{}
		edgeRepo.On("CompleteReferralEdge", mock.Anything, int64(100)).
			Return(int64(0), false, nil).Once()

		referrals := NewReferralService(userRepo, edgeRepo, nil, nil)
		svc := NewVerificationService(userRepo, newTaskService(taskRepo), referrals, nil)

		user := &model.User{TelegramID: 100, Username: "alice", ReferredBy: &referrerID}
		result, err := svc.CompleteTask(context.Background(), user, taskID)
		assert.NoError(t, err)
		assert.True(t, result.Credited)
		assert.True(t, result.FirstCompletion)
		assert.Equal(t, 25, user.Balance)
		assert.True(t, user.HasCompleted(taskID))

		select {
		case event := <-svc.Events():
			assert.Equal(t, int64(100), event.UserTelegramID)
			assert.Equal(t, taskID, event.TaskID)
			assert.Equal(t, 25, event.Reward)
		default:
			t.Fatal("expected a completion event")
		}

		userRepo.AssertExpectations(t)
		edgeRepo.AssertExpectations(t)
	})

	t.Run("replayed completion is acknowledged but not credited", func(t *testing.T) {
		taskRepo := &mocks.MockTaskRepository{}
		taskRepo.On("GetTaskByID", mock.Anything, taskID).Return(activeTask, nil)

		userRepo := &mocks.MockUserRepository{}
		userRepo.On("CreditTaskCompletion", mock.Anything, int64(100), taskID, 25).
			Return(false, 3, nil)

		edgeRepo := &mocks.MockReferralRepository{}
		referrals := NewReferralService(userRepo, edgeRepo, nil, nil)
		svc := NewVerificationService(userRepo, newTaskService(taskRepo), referrals, nil)

		user := &model.User{TelegramID: 100}
		result, err := svc.CompleteTask(context.Background(), user, taskID)
		assert.NoError(t, err)
		assert.False(t, result.Credited)
		assert.False(t, result.FirstCompletion)
		assert.Zero(t, user.Balance)
		assert.Empty(t, user.CompletedTasks)
		edgeRepo.AssertNotCalled(t, "CompleteReferralEdge")

		select {
		case <-svc.Events():
			t.Fatal("no event expected for a replay")
		default:
		}
	})

	t.Run("later completion does not settle the referral again", func(t *testing.T) {
		referrerID := int64(555)

		taskRepo := &mocks.MockTaskRepository{}
		taskRepo.On("GetTaskByID", mock.Anything, taskID).Return(activeTask, nil)

		userRepo := &mocks.MockUserRepository{}
		userRepo.On("CreditTaskCompletion", mock.Anything, int64(100), taskID, 25).
			Return(true, 2, nil)

		edgeRepo := &mocks.MockReferralRepository{}
		referrals := NewReferralService(userRepo, edgeRepo, nil, nil)
		svc := NewVerificationService(userRepo, newTaskService(taskRepo), referrals, nil)

		user := &model.User{TelegramID: 100, ReferredBy: &referrerID, CompletedTasks: completedTasks(1)}
		result, err := svc.CompleteTask(context.Background(), user, taskID)
		assert.NoError(t, err)
		assert.True(t, result.Credited)
		assert.False(t, result.FirstCompletion)
		edgeRepo.AssertNotCalled(t, "CompleteReferralEdge")
	})
}
