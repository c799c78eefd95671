package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL    string        `yaml:"database_url"`
	ListenAddr     string        `yaml:"listen_addr"`
	ReportInterval time.Duration `yaml:"report_interval"`
	ReportAt       string        `yaml:"report_at,omitempty"`
	TelegramToken  string        `yaml:"telegram_token,omitempty"`
	TelegramChatID int64         `yaml:"telegram_chat_id,omitempty"`
}

// Load reads configuration from the optional YAML file at path, then from
// environment variables, with sane defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("database_url", "timetracker.db")
	v.SetDefault("listen_addr", ":9000")
	v.SetDefault("report_interval_hours", "")
	v.SetDefault("report_at", "")
	v.SetDefault("telegram_token", "")
	v.SetDefault("telegram_chat_id", 0)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		ListenAddr:     strings.TrimSpace(v.GetString("listen_addr")),
		ReportInterval: parseInterval(strings.TrimSpace(v.GetString("report_interval_hours"))),
		ReportAt:       strings.TrimSpace(v.GetString("report_at")),
		TelegramToken:  strings.TrimSpace(v.GetString("telegram_token")),
		TelegramChatID: v.GetInt64("telegram_chat_id"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "timetracker.db"
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":9000"
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

// ReportsEnabled reports whether a periodic timer report is configured.
func (c Config) ReportsEnabled() bool {
	return c.ReportInterval > 0 || c.ReportAt != ""
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.TelegramToken != "" {
		c.TelegramToken = "***"
	}
	return c
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
