package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"TR_telegram_taskbot/internal/model"
)

// SettingsService holds the runtime-mutable settings. Values live in the
// store; this keeps an in-memory copy refreshed on every admin update.
type SettingsService struct {
	repo SettingsRepository

	mu      sync.Mutex
	current model.Settings
}

func NewSettingsService(repo SettingsRepository, defaults model.Settings) *SettingsService {
	return &SettingsService{
		repo:    repo,
		current: defaults,
	}
}

// Load overlays persisted settings onto the configured defaults.
func (s *SettingsService) Load(ctx context.Context) error {
	stored, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := stored[model.SettingCurrencyName]; ok {
		s.current.CurrencyName = v
	}
	if v, ok := stored[model.SettingMinWithdraw]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("stored %s is not a number: %w", model.SettingMinWithdraw, err)
		}
		s.current.MinWithdraw = n
	}
	if v, ok := stored[model.SettingReferralBonus]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("stored %s is not a number: %w", model.SettingReferralBonus, err)
		}
		s.current.ReferralBonus = n
	}

	return nil
}

func (s *SettingsService) Current() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update validates, persists and applies one setting.
func (s *SettingsService) Update(ctx context.Context, key, value string) error {
	var parsed int
	switch key {
	case model.SettingCurrencyName:
		if value == "" {
			return fmt.Errorf("currency name must not be empty")
		}
	case model.SettingMinWithdraw, model.SettingReferralBonus:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		if n < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
		parsed = n
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := s.repo.SetSetting(ctx, key, value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case model.SettingCurrencyName:
		s.current.CurrencyName = value
	case model.SettingMinWithdraw:
		s.current.MinWithdraw = parsed
	case model.SettingReferralBonus:
		s.current.ReferralBonus = parsed
	}

	return nil
}

// FormatAmount renders a balance in the configured currency.
func (s *SettingsService) FormatAmount(amount int) string {
	return fmt.Sprintf("%d %s", amount, s.Current().CurrencyName)
}
