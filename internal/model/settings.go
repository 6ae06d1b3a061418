package model

// Setting keys for runtime-mutable configuration. Values are stored as strings
// and parsed where used.
const (
	SettingCurrencyName  = "currency_name"
	SettingMinWithdraw   = "min_withdraw"
	SettingReferralBonus = "referral_bonus"
)

type Settings struct {
	CurrencyName  string
	MinWithdraw   int
	ReferralBonus int
}
