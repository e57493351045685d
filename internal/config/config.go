// Package config loads the bot settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string
	APIID    int
	APIHash  string
	OwnerID  int64

	DatabaseURL string
	Port        string
	SessionDir  string

	DefaultEmoji      string
	TagBatchSize      int
	SendInterval      time.Duration
	BroadcastInterval time.Duration

	MaxRestarts  int
	RestartDelay time.Duration

	LogLevel     slog.Level
	Verbose      bool
	SyncCommands bool

	SentryDSN         string
	SentryEnvironment string
}

// Load reads envFile (missing files are ignored) and then the process
// environment. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var errs []error
	cfg := &Config{
		BotToken:          getEnv("TELEGRAM_BOT_TOKEN", ""),
		APIHash:           getEnv("TELEGRAM_API_HASH", ""),
		DatabaseURL:       getEnv("DATABASE_URL", "bot_data.db"),
		Port:              getEnv("PORT", "5000"),
		SessionDir:        getEnv("SESSION_DIR", "./session"),
		DefaultEmoji:      getEnv("DEFAULT_EMOJI", "🔔"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),
	}

	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.APIID, err = getEnvAsInt("TELEGRAM_API_ID", 0)
	collect(err)
	owner, err := getEnvAsInt("OWNER_ID", 0)
	collect(err)
	cfg.OwnerID = int64(owner)
	cfg.TagBatchSize, err = getEnvAsInt("TAG_BATCH_SIZE", 10)
	collect(err)
	cfg.MaxRestarts, err = getEnvAsInt("MAX_RESTARTS", 10)
	collect(err)
	cfg.SendInterval, err = getEnvAsDuration("SEND_INTERVAL", 500*time.Millisecond)
	collect(err)
	cfg.BroadcastInterval, err = getEnvAsDuration("BROADCAST_INTERVAL", 100*time.Millisecond)
	collect(err)
	cfg.RestartDelay, err = getEnvAsDuration("RESTART_DELAY", 30*time.Second)
	collect(err)
	cfg.Verbose, err = getEnvAsBool("VERBOSE", false)
	collect(err)
	cfg.SyncCommands, err = getEnvAsBool("SYNC_COMMANDS", true)
	collect(err)
	cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info"))
	collect(err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings needed to connect to Telegram.
func (c *Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.APIID == 0 {
		errs = append(errs, errors.New("TELEGRAM_API_ID is required"))
	}
	if c.APIHash == "" {
		errs = append(errs, errors.New("TELEGRAM_API_HASH is required"))
	}
	if c.TagBatchSize <= 0 {
		errs = append(errs, errors.New("TAG_BATCH_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// NewLogger returns a text logger on stderr at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	level := c.LogLevel
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

// getEnvAsDuration accepts Go durations ("500ms") and bare seconds ("0.5").
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
