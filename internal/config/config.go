package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	DogAPIBaseURL        string        `mapstructure:"dog_api_base_url"`
	DogAPIKey            string        `mapstructure:"dog_api_key"`
	DogAPITimeoutSeconds int64         `mapstructure:"dog_api_timeout_seconds"`
	DogAPITimeout        time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	DeckRedrawLimit int    `mapstructure:"deck_redraw_limit"`
	HTTPAddr        string `mapstructure:"http_addr"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "dogdeck")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("dog_api_base_url", "https://api.thedogapi.com/v1")
	v.SetDefault("dog_api_key", "")
	v.SetDefault("dog_api_timeout_seconds", 0) // transport default
	v.SetDefault("publishers_file", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/seen.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("deck_redraw_limit", 3)
	v.SetDefault("http_addr", ":8080")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.DogAPIBaseURL = strings.TrimSpace(cfg.DogAPIBaseURL)
	cfg.DogAPIKey = strings.TrimSpace(cfg.DogAPIKey)
	if cfg.DogAPIBaseURL == "" {
		return nil, fmt.Errorf("dog_api_base_url is required")
	}
	if cfg.DogAPIKey == "" {
		return nil, fmt.Errorf("dog_api_key is required")
	}

	if cfg.DogAPITimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid dog_api_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.DogAPITimeout = time.Duration(cfg.DogAPITimeoutSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	if cfg.DeckRedrawLimit < 0 {
		return nil, fmt.Errorf("invalid deck_redraw_limit (must not be negative)")
	}

	return &cfg, nil
}

// Redacted returns a copy that is safe to log.
func (c Config) Redacted() Config {
	if c.DogAPIKey != "" {
		c.DogAPIKey = "***"
	}
	return c
}
