package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrInvalidDriver         = errors.New("unsupported database driver")
	ErrInvalidBounds         = errors.New("set bounds are inverted")
	ErrInvalidValue          = errors.New("config value out of range")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v1.0.0"

// TokenEnvVar is the environment variable that overrides the configured Discord token.
const TokenEnvVar = "DISCORD_TOKEN"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig `koanf:"common"`
	Bot    BotConfig    `koanf:"bot"`
}

// CommonConfig contains configuration shared between the bot and the CLI.
type CommonConfig struct {
	// Version of the common config.
	Version  int      `koanf:"version"`
	Debug    Debug    `koanf:"debug"`
	Database Database `koanf:"database"`
	Redis    Redis    `koanf:"redis"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	// Version of the bot config.
	Version     int         `koanf:"version"`
	Discord     Discord     `koanf:"discord"`
	Reputation  Reputation  `koanf:"reputation"`
	Leaderboard Leaderboard `koanf:"leaderboard"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// Database contains ledger storage configuration.
type Database struct {
	// Driver selects the storage engine: "postgres" or "sqlite".
	Driver string `koanf:"driver"`
	// Path of the SQLite database file.
	Path string `koanf:"path"`
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration for the leaderboard scan cache.
type Redis struct {
	// Enables the scan cache.
	Enabled bool `koanf:"enabled"`
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
	// Cached scan lifetime in seconds.
	CacheTTL int `koanf:"cache_ttl"`
}

// Discord contains Discord connection configuration.
type Discord struct {
	// Bot token. Overridden by the DISCORD_TOKEN environment variable.
	Token string `koanf:"token"`
	// Identity cache lifetime in minutes.
	IdentityCacheTTL int `koanf:"identity_cache_ttl"`
}

// Reputation contains the rules applied by the mutation gateway.
type Reputation struct {
	// Minimum account age in days for tenure-gated actions.
	MinAccountAgeDays int `koanf:"min_account_age_days"`
	// Per-actor cooldown in seconds for rep and norep.
	RepCooldown int `koanf:"rep_cooldown"`
	// Per-actor, per-target cooldown in hours for feedback.
	FeedbackCooldown int `koanf:"feedback_cooldown"`
	// Lower bound accepted by setrep.
	SetMin int64 `koanf:"set_min"`
	// Upper bound accepted by setrep and the clamp for stored counters.
	SetMax int64 `koanf:"set_max"`
	// Account IDs that can never be targeted.
	ExcludedIDs []uint64 `koanf:"excluded_ids"`
	// Legacy JSON dump imported when the ledger is empty.
	SeedFile string `koanf:"seed_file"`
}

// Leaderboard contains pagination settings.
type Leaderboard struct {
	// Entries per page.
	PageSize int `koanf:"page_size"`
	// Idle session timeout in seconds.
	SessionTimeout int `koanf:"session_timeout"`
	// Maximum open sessions held in memory.
	MaxSessions int `koanf:"max_sessions"`
}

// MinAccountAge returns the tenure threshold as a duration.
func (r *Reputation) MinAccountAge() time.Duration {
	return time.Duration(r.MinAccountAgeDays) * 24 * time.Hour
}

// RepWindow returns the rep/norep cooldown as a duration.
func (r *Reputation) RepWindow() time.Duration {
	return time.Duration(r.RepCooldown) * time.Second
}

// FeedbackWindow returns the feedback cooldown as a duration.
func (r *Reputation) FeedbackWindow() time.Duration {
	return time.Duration(r.FeedbackCooldown) * time.Hour
}

// Timeout returns the session idle timeout as a duration.
func (l *Leaderboard) Timeout() time.Duration {
	return time.Duration(l.SessionTimeout) * time.Second
}

// LoadConfig loads the configuration from the first config path containing each file.
// It returns the config along with the directory the files were read from.
func LoadConfig() (*Config, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadConfigFrom([]string{
		".repledger",
		homeDir + "/.repledger/config",
		"/etc/repledger/config",
		"/app/config",
		"config",
		".",
	})
}

// defaults are set before any file is loaded, so a value written in a file
// always wins, including an explicit zero.
var defaults = map[string]any{
	"common.debug.log_level":              "info",
	"common.debug.max_logs_to_keep":       10,
	"common.debug.max_log_lines":          10000,
	"common.database.driver":              DriverSQLite,
	"common.database.path":                "data/ledger.db",
	"common.redis.cache_ttl":              300,
	"bot.discord.identity_cache_ttl":      30,
	"bot.reputation.min_account_age_days": 7,
	"bot.reputation.rep_cooldown":         240,
	"bot.reputation.feedback_cooldown":    24,
	"bot.reputation.set_min":              -1000,
	"bot.reputation.set_max":              1000,
	"bot.leaderboard.page_size":           10,
	"bot.leaderboard.session_timeout":     120,
	"bot.leaderboard.max_sessions":        1000,
}

// LoadConfigFrom loads common.toml and bot.toml from the given search paths.
// Each file is merged under its own name, so common.toml fills Config.Common.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	var usedConfigPath string

	configFiles := []string{"common", "bot"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)

			fileK := koanf.New(".")
			if err := fileK.Load(file.Provider(configPath), toml.Parser()); err != nil {
				continue
			}

			if err := k.MergeAt(fileK, configName); err != nil {
				return nil, "", fmt.Errorf("failed to merge %s.toml: %w", configName, err)
			}

			configLoaded = true

			if usedConfigPath == "" {
				usedConfigPath = path
			}

			break
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("bot", config.Bot.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	// A missing .env file is not an error
	_ = godotenv.Load()
	if token := os.Getenv(TokenEnvVar); token != "" {
		config.Bot.Discord.Token = token
	}

	if err := validate(&config); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// validate rejects configurations the engine cannot run with.
func validate(c *Config) error {
	switch c.Common.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDriver, c.Common.Database.Driver)
	}

	if c.Bot.Reputation.SetMin > c.Bot.Reputation.SetMax {
		return fmt.Errorf("%w: %d > %d", ErrInvalidBounds, c.Bot.Reputation.SetMin, c.Bot.Reputation.SetMax)
	}

	// Zero disables a rule, but a negative window or age has no meaning
	rep := c.Bot.Reputation
	for name, value := range map[string]int{
		"reputation.min_account_age_days": rep.MinAccountAgeDays,
		"reputation.rep_cooldown":         rep.RepCooldown,
		"reputation.feedback_cooldown":    rep.FeedbackCooldown,
	} {
		if value < 0 {
			return fmt.Errorf("%w: %s = %d", ErrInvalidValue, name, value)
		}
	}

	// These size pages, caches and log rotation and must stay positive
	lb := c.Bot.Leaderboard
	for name, value := range map[string]int{
		"leaderboard.page_size":       lb.PageSize,
		"leaderboard.session_timeout": lb.SessionTimeout,
		"leaderboard.max_sessions":    lb.MaxSessions,
		"discord.identity_cache_ttl":  c.Bot.Discord.IdentityCacheTTL,
		"redis.cache_ttl":             c.Common.Redis.CacheTTL,
		"debug.max_logs_to_keep":      c.Common.Debug.MaxLogsToKeep,
		"debug.max_log_lines":         c.Common.Debug.MaxLogLines,
	} {
		if value <= 0 {
			return fmt.Errorf("%w: %s = %d", ErrInvalidValue, name, value)
		}
	}

	return nil
}

// checkConfigVersion verifies that a config file matches the expected version.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/repledger/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
