package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "LISTEN_ADDR", "REPORT_INTERVAL_HOURS", "REPORT_AT", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "timetracker.db", cfg.DatabaseURL)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Zero(t, cfg.ReportInterval)
	assert.False(t, cfg.ReportsEnabled())
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", " /var/lib/tt/data.db ")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:8080")
	t.Setenv("REPORT_INTERVAL_HOURS", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/tt/data.db", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, 2*time.Hour, cfg.ReportInterval)
	assert.True(t, cfg.ReportsEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_url: file.db\nreport_at: \"07:30\"\nlisten_addr: \":7000\"\n"), 0o644))
	t.Setenv("LISTEN_ADDR", ":7001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.DatabaseURL)
	assert.Equal(t, "07:30", cfg.ReportAt)
	assert.Equal(t, ":7001", cfg.ListenAddr)
	assert.True(t, cfg.ReportsEnabled())
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_TelegramNeedsChat(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("TELEGRAM_CHAT_ID", "42")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.TelegramChatID)
	assert.Equal(t, "***", cfg.Redacted().TelegramToken)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
}

func TestParseInterval(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseInterval(""))
	assert.Equal(t, time.Duration(0), parseInterval("-1"))
	assert.Equal(t, time.Duration(0), parseInterval("soon"))
	assert.Equal(t, 90*time.Minute, parseInterval("1.5"))
}
