package main

import (
	"fmt"
	"strings"

	"TR_telegram_taskbot/internal/bot"
	"TR_telegram_taskbot/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`
	Bot      bot.Config        `yaml:"bot"`
	Rewards  RewardsConfig     `yaml:"rewards"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// RewardsConfig holds the boot-time defaults; the values persisted through the
// admin settings panel override them.
type RewardsConfig struct {
	CurrencyName  string `yaml:"currencyName"`
	MinWithdraw   int    `yaml:"minWithdraw"`
	ReferralBonus int    `yaml:"referralBonus"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("rewards.currencyName", "points")
	viper.SetDefault("rewards.minWithdraw", 100)
	viper.SetDefault("rewards.referralBonus", 50)
	viper.SetDefault("logLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
