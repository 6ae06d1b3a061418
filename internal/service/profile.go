package service

import (
	"context"
	"fmt"
	"strings"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/session"
)

const (
	promptTelegram = "Please enter your Telegram username (with @):"
	promptTwitter  = "Please enter your Twitter username (without @):"
	promptWallet   = "Please enter your Base wallet address (starts with 0x):"

	rejectTelegram = "⚠️ Please enter a valid Telegram username starting with @"
	rejectTwitter  = "⚠️ Please enter your Twitter username without @"
	rejectWallet   = "⚠️ Please enter a valid Base wallet address:\n" +
		"• Should start with 0x\n" +
		"• Should be exactly 42 characters long\n" +
		"• Should be a valid Ethereum-style address\n" +
		"• Example: 0x742d35Cc6634C893292Ce8bB6239C002Ad8e6b59"
)

// IsValidWalletAddress accepts Ethereum-style addresses: 0x plus 40 hex digits.
func IsValidWalletAddress(addr string) bool {
	if len(addr) != 42 {
		return false
	}
	if !strings.HasPrefix(addr, "0x") {
		return false
	}
	for _, c := range addr[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

type ProfileService struct {
	repo      UserRepository
	referrals *ReferralService
}

func NewProfileService(repo UserRepository, referrals *ReferralService) *ProfileService {
	return &ProfileService{
		repo:      repo,
		referrals: referrals,
	}
}

// StepResult is the outcome of feeding one message into the wizard. Replies
// holds the messages to send in order; Completed reports that the wallet step
// finished and the chat should return to the main menu.
type StepResult struct {
	Replies   []string
	Advanced  bool
	Completed bool
}

// Start puts the chat on the first wizard step.
func (s *ProfileService) Start(sess *session.Session) string {
	sess.State = session.ProfileState{Step: session.ProfileStepTelegram}
	return promptTelegram
}

// HandleInput consumes one text message for the current step. Validation
// failure re-prompts without advancing; at most one step moves per message.
func (s *ProfileService) HandleInput(ctx context.Context, sess *session.Session, user *model.User, input string) (*StepResult, error) {
	state, ok := sess.State.(session.ProfileState)
	if !ok {
		return nil, fmt.Errorf("chat %d is not in the profile wizard", sess.ChatID)
	}

	input = strings.TrimSpace(input)

	switch state.Step {
	case session.ProfileStepTelegram:
		if !strings.HasPrefix(input, "@") {
			return &StepResult{Replies: []string{rejectTelegram}}, nil
		}
		if err := s.repo.UpdateTelegramUsername(ctx, user.TelegramID, input); err != nil {
			return nil, fmt.Errorf("failed to save telegram username: %w", err)
		}
		user.TelegramUsername = input
		sess.State = session.ProfileState{Step: session.ProfileStepTwitter}
		return &StepResult{Replies: []string{promptTwitter}, Advanced: true}, nil

	case session.ProfileStepTwitter:
		if strings.Contains(input, "@") {
			return &StepResult{Replies: []string{rejectTwitter}}, nil
		}
		if err := s.repo.UpdateTwitterUsername(ctx, user.TelegramID, input); err != nil {
			return nil, fmt.Errorf("failed to save twitter username: %w", err)
		}
		user.TwitterUsername = input
		sess.State = session.ProfileState{Step: session.ProfileStepWallet}
		return &StepResult{Replies: []string{promptWallet}, Advanced: true}, nil

	case session.ProfileStepWallet:
		if !IsValidWalletAddress(input) {
			return &StepResult{Replies: []string{rejectWallet}}, nil
		}

		result := &StepResult{Advanced: true, Completed: true}

		var referredBy *int64
		if sess.ReferralID != nil {
			referrerName, linked, err := s.referrals.RegisterEdge(ctx, *sess.ReferralID, user)
			if err != nil {
				return nil, fmt.Errorf("failed to register referral: %w", err)
			}
			if linked {
				referredBy = sess.ReferralID
				result.Replies = append(result.Replies,
					fmt.Sprintf("🎉 You were referred by %s!", referrerName))
			}
		}

		if err := s.repo.CompleteProfile(ctx, user.TelegramID, input, referredBy); err != nil {
			return nil, fmt.Errorf("failed to complete profile: %w", err)
		}
		user.WalletAddress = input
		user.ProfileCompleted = true
		user.ReferredBy = referredBy

		sess.ClearState()
		sess.ReferralID = nil

		result.Replies = append(result.Replies, "✅ Profile data saved successfully!")
		return result, nil
	}

	return nil, fmt.Errorf("unknown profile step %d", state.Step)
}
