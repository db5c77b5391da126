// Package config provides configuration loading, validation, and management
// for the bunbot application. It handles reading from YAML files, BOT_*
// environment variable overrides, default values, and validation of
// configuration parameters.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all components
// of the bunbot system, including logging, the Telegram transport, chat-state
// persistence, trigger/template assets, and the voice synthesis vendor.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Data     DataConfig     `mapstructure:"data"`
	Bot      BotConfig      `mapstructure:"bot"`
	Acapela  AcapelaConfig  `mapstructure:"acapela"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// TelegramConfig holds transport credentials and the privileged operator identity.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// AdminUID is the single hardcoded operator identity. It always passes
	// admin checks and receives error diagnostics.
	AdminUID int64 `mapstructure:"admin_uid" validate:"gte=0"`
}

// DataConfig holds filesystem locations for assets and runtime state.
type DataConfig struct {
	// Dir contains locale bundles (locales/<locale>.yml), trigger files
	// (<locale>-triggers.json), and media referenced by respond intents.
	Dir       string `mapstructure:"dir"        validate:"required"`
	StatePath string `mapstructure:"state_path" validate:"required"`
	TempDir   string `mapstructure:"temp_dir"   validate:"required"`
}

// BotConfig holds dispatch and bookkeeping behavior knobs.
type BotConfig struct {
	DefaultLocale    string        `mapstructure:"default_locale"    validate:"required"`
	Locales          []string      `mapstructure:"locales"           validate:"min=1"`
	AliveCutoff      time.Duration `mapstructure:"alive_cutoff"      validate:"gt=0"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval" validate:"gt=0"`
	CacheMaxAge      time.Duration `mapstructure:"cache_max_age"     validate:"gt=0"`
}

// AcapelaConfig holds credentials for the external voice synthesis vendor.
// Usually supplied via BOT_ACAPELA_USERNAME / BOT_ACAPELA_PASSWORD.
type AcapelaConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. The config file at configPath (optional)
// 3. BOT_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine; defaults and env vars apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Credential keys need a registered default for AutomaticEnv to see them.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_uid", 0)
	v.SetDefault("acapela.username", "")
	v.SetDefault("acapela.password", "")

	v.SetDefault("data.dir", "assets")
	v.SetDefault("data.state_path", "database.json")
	v.SetDefault("data.temp_dir", "temp")

	v.SetDefault("bot.default_locale", "en")
	v.SetDefault("bot.locales", []string{"en"})
	// One week without a message marks a group as dead.
	v.SetDefault("bot.alive_cutoff", 7*24*time.Hour)
	v.SetDefault("bot.snapshot_interval", 10*time.Second)
	v.SetDefault("bot.cache_max_age", 30*24*time.Hour)
}
