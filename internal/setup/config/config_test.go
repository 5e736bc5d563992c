package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/repledger/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfigFrom(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "")

	dir := t.TempDir()
	writeFile(t, dir, "common.toml", `
version = 1

[database]
driver = "sqlite"
path = "ledger.db"
`)
	writeFile(t, dir, "bot.toml", `
version = 1

[discord]
token = "from-file"

[reputation]
rep_cooldown = 60
excluded_ids = [42, 43]
`)

	cfg, usedPath, err := config.LoadConfigFrom([]string{filepath.Join(dir, "missing"), dir})
	require.NoError(t, err)
	assert.Equal(t, dir, usedPath)

	assert.Equal(t, "ledger.db", cfg.Common.Database.Path)
	assert.Equal(t, "from-file", cfg.Bot.Discord.Token)
	assert.Equal(t, time.Minute, cfg.Bot.Reputation.RepWindow())
	assert.Equal(t, []uint64{42, 43}, cfg.Bot.Reputation.ExcludedIDs)

	// Unset values fall back to defaults
	assert.Equal(t, 7*24*time.Hour, cfg.Bot.Reputation.MinAccountAge())
	assert.Equal(t, 24*time.Hour, cfg.Bot.Reputation.FeedbackWindow())
	assert.Equal(t, int64(-1000), cfg.Bot.Reputation.SetMin)
	assert.Equal(t, int64(1000), cfg.Bot.Reputation.SetMax)
	assert.Equal(t, 10, cfg.Bot.Leaderboard.PageSize)
	assert.Equal(t, 120*time.Second, cfg.Bot.Leaderboard.Timeout())
	assert.Equal(t, "info", cfg.Common.Debug.LogLevel)
}

func TestLoadConfigExplicitZeros(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "")

	dir := t.TempDir()
	writeFile(t, dir, "common.toml", "version = 1\n")
	writeFile(t, dir, "bot.toml", `
version = 1

[reputation]
min_account_age_days = 0
rep_cooldown = 0
feedback_cooldown = 0
set_min = 0
set_max = 50
`)

	cfg, _, err := config.LoadConfigFrom([]string{dir})
	require.NoError(t, err)

	assert.Zero(t, cfg.Bot.Reputation.MinAccountAge())
	assert.Zero(t, cfg.Bot.Reputation.RepWindow())
	assert.Zero(t, cfg.Bot.Reputation.FeedbackWindow())
	assert.Equal(t, int64(0), cfg.Bot.Reputation.SetMin)
	assert.Equal(t, int64(50), cfg.Bot.Reputation.SetMax)

	// Sections the file leaves out still get defaults
	assert.Equal(t, config.DriverSQLite, cfg.Common.Database.Driver)
	assert.Equal(t, 1000, cfg.Bot.Leaderboard.MaxSessions)
}

func TestLoadConfigTokenOverride(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "from-env")

	dir := t.TempDir()
	writeFile(t, dir, "common.toml", "version = 1\n")
	writeFile(t, dir, "bot.toml", "version = 1\n[discord]\ntoken = \"from-file\"\n")

	cfg, _, err := config.LoadConfigFrom([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bot.Discord.Token)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "")

	tests := []struct {
		name     string
		common   string
		bot      string
		expected error
	}{
		{
			name:     "missing bot file",
			common:   "version = 1\n",
			expected: config.ErrConfigFileNotFound,
		},
		{
			name:     "missing version",
			common:   "[debug]\nlog_level = \"debug\"\n",
			bot:      "version = 1\n",
			expected: config.ErrConfigVersionMissing,
		},
		{
			name:     "version mismatch",
			common:   "version = 1\n",
			bot:      "version = 9\n",
			expected: config.ErrConfigVersionMismatch,
		},
		{
			name:     "unknown driver",
			common:   "version = 1\n[database]\ndriver = \"mongo\"\n",
			bot:      "version = 1\n",
			expected: config.ErrInvalidDriver,
		},
		{
			name:     "negative cooldown",
			common:   "version = 1\n",
			bot:      "version = 1\n[reputation]\nrep_cooldown = -5\n",
			expected: config.ErrInvalidValue,
		},
		{
			name:     "zero page size",
			common:   "version = 1\n",
			bot:      "version = 1\n[leaderboard]\npage_size = 0\n",
			expected: config.ErrInvalidValue,
		},
		{
			name:     "inverted bounds",
			common:   "version = 1\n",
			bot:      "version = 1\n[reputation]\nset_min = 10\nset_max = 5\n",
			expected: config.ErrInvalidBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "common.toml", tt.common)

			if tt.bot != "" {
				writeFile(t, dir, "bot.toml", tt.bot)
			}

			_, _, err := config.LoadConfigFrom([]string{dir})
			require.ErrorIs(t, err, tt.expected)
		})
	}
}
