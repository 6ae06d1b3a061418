package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/repository"

	"github.com/google/uuid"
)

type WithdrawService struct {
	repo     WithdrawalRepository
	settings *SettingsService
}

func NewWithdrawService(repo WithdrawalRepository, settings *SettingsService) *WithdrawService {
	return &WithdrawService{
		repo:     repo,
		settings: settings,
	}
}

// Validate checks whether the user may request a withdrawal at all: profile
// complete and balance at or above the configured minimum.
func (s *WithdrawService) Validate(user *model.User) error {
	if !user.ProfileCompleted || user.WalletAddress == "" {
		return ErrProfileIncomplete
	}
	if user.Balance < s.settings.Current().MinWithdraw {
		return ErrBelowMinWithdraw
	}
	return nil
}

// Confirm debits the full balance and records a pending withdrawal to the
// user's wallet.
func (s *WithdrawService) Confirm(ctx context.Context, user *model.User) (*model.Withdrawal, error) {
	if err := s.Validate(user); err != nil {
		return nil, err
	}

	w := &model.Withdrawal{
		ID:             uuid.New(),
		UserTelegramID: user.TelegramID,
		Amount:         user.Balance,
		WalletAddress:  user.WalletAddress,
		Status:         model.WithdrawalPending,
		CreatedAt:      time.Now(),
	}

	if err := s.repo.CreateWithdrawal(ctx, w); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	user.Balance = 0
	return w, nil
}

// Last returns the most recent withdrawal, or nil if there is none.
func (s *WithdrawService) Last(ctx context.Context, telegramID int64) (*model.Withdrawal, error) {
	w, err := s.repo.GetLastWithdrawal(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func (s *WithdrawService) History(ctx context.Context, telegramID int64) ([]*model.Withdrawal, error) {
	return s.repo.ListWithdrawals(ctx, telegramID)
}

// Pending lists all withdrawals awaiting admin review.
func (s *WithdrawService) Pending(ctx context.Context) ([]*model.Withdrawal, error) {
	return s.repo.ListPendingWithdrawals(ctx)
}

// Resolve finalizes a pending withdrawal. Only paid, rejected and cancelled
// are valid outcomes; rejection refunds the user at the storage level.
func (s *WithdrawService) Resolve(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus) error {
	switch status {
	case model.WithdrawalPaid, model.WithdrawalRejected, model.WithdrawalCancelled:
	default:
		return fmt.Errorf("invalid withdrawal resolution %q", status)
	}

	err := s.repo.ResolveWithdrawal(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWithdrawalNotFound
		}
		return err
	}
	return nil
}
