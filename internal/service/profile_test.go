package service

import (
	"context"
	"testing"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/repository"
	"TR_telegram_taskbot/internal/service/mocks"
	"TR_telegram_taskbot/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestIsValidWalletAddress(t *testing.T) {
	tests := []struct {
		name  string
		addr  string
		valid bool
	}{
		{"valid lowercase", "0x742d35cc6634c893292ce8bb6239c002ad8e6b59", true},
		{"valid mixed case", "0x742d35Cc6634C893292Ce8bB6239C002Ad8e6b59", true},
		{"too short", "0x742d35cc", false},
		{"too long", "0x742d35cc6634c893292ce8bb6239c002ad8e6b5900", false},
		{"missing prefix", "742d35cc6634c893292ce8bb6239c002ad8e6b5900", false},
		{"non-hex characters", "0x742d35cc6634c893292ce8bb6239c002ad8e6bzz", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidWalletAddress(tt.addr))
		})
	}
}

func TestProfileService_HandleInput_TelegramStep(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		mockSetup    func(*mocks.MockUserRepository)
		wantAdvanced bool
		wantReply    string
	}{
		{
			name:  "valid handle advances",
			input: "@alice",
			mockSetup: func(m *mocks.MockUserRepository) {
				m.On("UpdateTelegramUsername", mock.Anything, int64(100), "@alice").Return(nil)
			},
			wantAdvanced: true,
			wantReply:    "Please enter your Twitter username (without @):",
		},
		{
			name:         "missing @ re-prompts without advancing",
			input:        "alice",
			mockSetup:    func(m *mocks.MockUserRepository) {},
			wantAdvanced: false,
			wantReply:    "⚠️ Please enter a valid Telegram username starting with @",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mocks.MockUserRepository{}
			tt.mockSetup(userRepo)
			svc := NewProfileService(userRepo, nil)

			sess := &session.Session{ChatID: 100, State: session.ProfileState{Step: session.ProfileStepTelegram}}
			user := &model.User{TelegramID: 100, Username: "alice"}

			result, err := svc.HandleInput(context.Background(), sess, user, tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantAdvanced, result.Advanced)
			assert.Equal(t, []string{tt.wantReply}, result.Replies)

			if tt.wantAdvanced {
				assert.Equal(t, session.ProfileState{Step: session.ProfileStepTwitter}, sess.State)
				assert.Equal(t, "@alice", user.TelegramUsername)
			} else {
				assert.Equal(t, session.ProfileState{Step: session.ProfileStepTelegram}, sess.State)
			}
			userRepo.AssertExpectations(t)
		})
	}
}

func TestProfileService_HandleInput_TwitterStep(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	userRepo.On("UpdateTwitterUsername", mock.Anything, int64(100), "alice_tw").Return(nil)
	svc := NewProfileService(userRepo, nil)

	sess := &session.Session{ChatID: 100, State: session.ProfileState{Step: session.ProfileStepTwitter}}
	user := &model.User{TelegramID: 100}

	// Handles with @ are rejected on this step.
	result, err := svc.HandleInput(context.Background(), sess, user, "@alice_tw")
	assert.NoError(t, err)
	assert.False(t, result.Advanced)
	assert.Equal(t, session.ProfileState{Step: session.ProfileStepTwitter}, sess.State)

	result, err = svc.HandleInput(context.Background(), sess, user, "alice_tw")
	assert.NoError(t, err)
	assert.True(t, result.Advanced)
	assert.Equal(t, session.ProfileState{Step: session.ProfileStepWallet}, sess.State)
	assert.Equal(t, "alice_tw", user.TwitterUsername)
	userRepo.AssertExpectations(t)
}

func TestProfileService_HandleInput_WalletStep(t *testing.T) {
	const wallet = "0x742d35Cc6634C893292Ce8bB6239C002Ad8e6b59"

	t.Run("invalid address re-prompts", func(t *testing.T) {
		userRepo := &mocks.MockUserRepository{}
		svc := NewProfileService(userRepo, nil)

		sess := &session.Session{ChatID: 100, State: session.ProfileState{Step: session.ProfileStepWallet}}
		user := &model.User{TelegramID: 100}

		result, err := svc.HandleInput(context.Background(), sess, user, "0xnothex")
		assert.NoError(t, err)
		assert.False(t, result.Advanced)
		assert.False(t, result.Completed)
		assert.Equal(t, session.ProfileState{Step: session.ProfileStepWallet}, sess.State)
	})

	t.Run("valid address completes profile", func(t *testing.T) {
		userRepo := &mocks.MockUserRepository{}
		userRepo.On("CompleteProfile", mock.Anything, int64(100), wallet, (*int64)(nil)).Return(nil)
		svc := NewProfileService(userRepo, nil)

		sess := &session.Session{ChatID: 100, State: session.ProfileState{Step: session.ProfileStepWallet}}
		user := &model.User{TelegramID: 100}

		result, err := svc.HandleInput(context.Background(), sess, user, wallet)
		assert.NoError(t, err)
		assert.True(t, result.Completed)
		assert.Equal(t, []string{"✅ Profile data saved successfully!"}, result.Replies)
		assert.Nil(t, sess.State)
		assert.True(t, user.ProfileCompleted)
		assert.Equal(t, wallet, user.WalletAddress)
		userRepo.AssertExpectations(t)
	})

	t.Run("referral edge registers at wallet step", func(t *testing.T) {
		referrerID := int64(555)

		userRepo := &mocks.MockUserRepository{}
		userRepo.On("GetUserByTelegramID", mock.Anything, referrerID).
			Return(&model.User{TelegramID: referrerID, Username: "inviter"}, nil)
		userRepo.On("CompleteProfile", mock.Anything, int64(100), wallet, &referrerID).Return(nil)

		edgeRepo := &mocks.MockReferralRepository{}
		edgeRepo.On("AddReferralEdge", mock.Anything, mock.MatchedBy(func(e *model.ReferralEdge) bool {
			return e.ReferrerID == referrerID && e.UserID == 100 && !e.Completed
		})).Return(true, nil)

		referrals := NewReferralService(userRepo, edgeRepo, nil, nil)
		svc := NewProfileService(userRepo, referrals)

		sess := &session.Session{
			ChatID:     100,
			State:      session.ProfileState{Step: session.ProfileStepWallet},
			ReferralID: &referrerID,
		}
		user := &model.User{TelegramID: 100, Username: "invitee"}

		result, err := svc.HandleInput(context.Background(), sess, user, wallet)
		assert.NoError(t, err)
		assert.True(t, result.Completed)
		assert.Equal(t, []string{
			"🎉 You were referred by inviter!",
			"✅ Profile data saved successfully!",
		}, result.Replies)
		assert.Equal(t, &referrerID, user.ReferredBy)
		assert.Nil(t, sess.ReferralID)
		userRepo.AssertExpectations(t)
		edgeRepo.AssertExpectations(t)
	})

	t.Run("vanished referrer completes without link", func(t *testing.T) {
		referrerID := int64(555)

		userRepo := &mocks.MockUserRepository{}
		userRepo.On("GetUserByTelegramID", mock.Anything, referrerID).
			Return(nil, repository.ErrNotFound)
		userRepo.On("CompleteProfile", mock.Anything, int64(100), wallet, (*int64)(nil)).Return(nil)

		edgeRepo := &mocks.MockReferralRepository{}
		referrals := NewReferralService(userRepo, edgeRepo, nil, nil)
		svc := NewProfileService(userRepo, referrals)

		sess := &session.Session{
			ChatID:     100,
			State:      session.ProfileState{Step: session.ProfileStepWallet},
			ReferralID: &referrerID,
		}
		user := &model.User{TelegramID: 100}

		result, err := svc.HandleInput(context.Background(), sess, user, wallet)
		assert.NoError(t, err)
		assert.True(t, result.Completed)
		assert.Equal(t, []string{"✅ Profile data saved successfully!"}, result.Replies)
		assert.Nil(t, user.ReferredBy)
		userRepo.AssertExpectations(t)
		edgeRepo.AssertNotCalled(t, "AddReferralEdge")
	})
}
