package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/repository"
	"TR_telegram_taskbot/pkg/logger"

	"go.uber.org/zap"
)

type ReferralService struct {
	users    UserRepository
	edges    ReferralRepository
	settings *SettingsService
	notifier Notifier
}

func NewReferralService(users UserRepository, edges ReferralRepository, settings *SettingsService, notifier Notifier) *ReferralService {
	return &ReferralService{
		users:    users,
		edges:    edges,
		settings: settings,
		notifier: notifier,
	}
}

// RegisterEdge links an invitee to their inviter at the moment the invitee
// finishes the profile wizard. Replays are harmless: the edge key is the
// (inviter, invitee) pair. Returns the inviter's display name for the
// congratulation message.
func (s *ReferralService) RegisterEdge(ctx context.Context, referrerID int64, invitee *model.User) (string, bool, error) {
	if referrerID == invitee.TelegramID {
		return "", false, nil
	}

	referrer, err := s.users.GetUserByTelegramID(ctx, referrerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up referrer: %w", err)
	}

	_, err = s.edges.AddReferralEdge(ctx, &model.ReferralEdge{
		ReferrerID: referrerID,
		UserID:     invitee.TelegramID,
		Username:   invitee.Username,
		Completed:  false,
		Claimed:    false,
		ReferredAt: time.Now(),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to add referral edge: %w", err)
	}

	return referrer.DisplayName(), true, nil
}

// CompleteReferral credits the inviter when the invitee finishes their first
// task. Both call sites (the background check after resolve and the proof
// submission path) funnel here; the storage-level completed=false guard makes
// the credit fire at most once no matter how they interleave.
func (s *ReferralService) CompleteReferral(ctx context.Context, invitee *model.User) error {
	referrerID, flipped, err := s.edges.CompleteReferralEdge(ctx, invitee.TelegramID)
	if err != nil {
		return fmt.Errorf("failed to complete referral edge: %w", err)
	}
	if !flipped {
		return nil
	}

	bonus := s.settings.Current().ReferralBonus
	if err := s.users.IncrementBalance(ctx, referrerID, bonus); err != nil {
		return fmt.Errorf("failed to credit referral bonus: %w", err)
	}

	go func() {
		text := fmt.Sprintf("🎉 Referral bonus earned!\nUser @%s completed their first task.\n+%s added to your balance!",
			invitee.Username, s.settings.FormatAmount(bonus))
		if err := s.notifier.Notify(context.Background(), referrerID, text); err != nil {
			logger.Logger().Warn("failed to notify referrer",
				zap.Int64("referrer_id", referrerID), zap.Error(err))
		}
	}()

	return nil
}

// CheckCompletion is the background call site: once a referred user has any
// completed task, make sure their inviter has been credited.
func (s *ReferralService) CheckCompletion(ctx context.Context, user *model.User) error {
	if user.ReferredBy == nil || len(user.CompletedTasks) == 0 {
		return nil
	}
	return s.CompleteReferral(ctx, user)
}

func (s *ReferralService) ListEdges(ctx context.Context, referrerID int64) ([]*model.ReferralEdge, error) {
	return s.edges.GetReferralEdges(ctx, referrerID)
}
