package service

import (
	"context"
	"testing"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSettingsService_Load(t *testing.T) {
	repo := &mocks.MockSettingsRepository{}
	repo.On("LoadSettings", mock.Anything).Return(map[string]string{
		model.SettingMinWithdraw: "200",
	}, nil)

	svc := NewSettingsService(repo, model.Settings{
		CurrencyName:  "points",
		MinWithdraw:   100,
		ReferralBonus: 50,
	})
	assert.NoError(t, svc.Load(context.Background()))

	current := svc.Current()
	assert.Equal(t, "points", current.CurrencyName, "unset keys keep their defaults")
	assert.Equal(t, 200, current.MinWithdraw, "persisted values override defaults")
	assert.Equal(t, 50, current.ReferralBonus)
}

func TestSettingsService_Load_CorruptValue(t *testing.T) {
	repo := &mocks.MockSettingsRepository{}
	repo.On("LoadSettings", mock.Anything).Return(map[string]string{
		model.SettingReferralBonus: "not-a-number",
	}, nil)

	svc := NewSettingsService(repo, model.Settings{ReferralBonus: 50})
	assert.Error(t, svc.Load(context.Background()))
}

func TestSettingsService_Update(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		wantErr   bool
		wantCheck func(*testing.T, model.Settings)
	}{
		{
			name: "currency name", key: model.SettingCurrencyName, value: "coins",
			wantCheck: func(t *testing.T, s model.Settings) {
				assert.Equal(t, "coins", s.CurrencyName)
			},
		},
		{
			name: "min withdraw", key: model.SettingMinWithdraw, value: "300",
			wantCheck: func(t *testing.T, s model.Settings) {
				assert.Equal(t, 300, s.MinWithdraw)
			},
		},
		{
			name: "referral bonus", key: model.SettingReferralBonus, value: "75",
			wantCheck: func(t *testing.T, s model.Settings) {
				assert.Equal(t, 75, s.ReferralBonus)
			},
		},
		{name: "empty currency name", key: model.SettingCurrencyName, value: "", wantErr: true},
		{name: "non-numeric amount", key: model.SettingMinWithdraw, value: "lots", wantErr: true},
		{name: "negative amount", key: model.SettingReferralBonus, value: "-5", wantErr: true},
		{name: "unknown key", key: "max_users", value: "10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockSettingsRepository{}
			if !tt.wantErr {
				repo.On("SetSetting", mock.Anything, tt.key, tt.value).Return(nil).Once()
			}

			svc := NewSettingsService(repo, model.Settings{CurrencyName: "points"})
			err := svc.Update(context.Background(), tt.key, tt.value)

			if tt.wantErr {
				assert.Error(t, err)
				repo.AssertNotCalled(t, "SetSetting")
			} else {
				assert.NoError(t, err)
				tt.wantCheck(t, svc.Current())
				repo.AssertExpectations(t)
			}
		})
	}
}

func TestSettingsService_FormatAmount(t *testing.T) {
	svc := newTestSettings(t, model.Settings{CurrencyName: "coins"})
	assert.Equal(t, "125 coins", svc.FormatAmount(125))
}
