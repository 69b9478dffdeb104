package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort string
	LogLevel   string
	LogDevel   bool

	DatabaseDSN string

	TemporalAddress   string
	TemporalNamespace string
	TaskQueue         string

	BackendBaseURL string
	BackendTimeout time.Duration

	SessionIdleTimeout time.Duration

	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	BoardingPassCacheTTL time.Duration
}

// Load reads configuration from the environment, with an optional .env file underneath.
func Load() (*Config, error) {
	return load(".env")
}

// LoadWithPath reads configuration from a specific env file.
func LoadWithPath(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		// a missing .env is fine, the environment may carry everything
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		ServerPort:           v.GetString("SERVER_PORT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogDevel:             v.GetBool("LOG_DEVELOPMENT"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		TemporalAddress:      v.GetString("TEMPORAL_ADDRESS"),
		TemporalNamespace:    v.GetString("TEMPORAL_NAMESPACE"),
		TaskQueue:            v.GetString("TASK_QUEUE"),
		BackendBaseURL:       v.GetString("BACKEND_BASE_URL"),
		BackendTimeout:       v.GetDuration("BACKEND_TIMEOUT"),
		SessionIdleTimeout:   v.GetDuration("SESSION_IDLE_TIMEOUT"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		BoardingPassCacheTTL: v.GetDuration("BOARDING_PASS_CACHE_TTL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)

	v.SetDefault("DATABASE_DSN", "booking_user:booking_pass@tcp(localhost:3306)/booking_wizard?parseTime=true")

	v.SetDefault("TEMPORAL_ADDRESS", "localhost:7233")
	v.SetDefault("TEMPORAL_NAMESPACE", "default")
	v.SetDefault("TASK_QUEUE", "booking-wizard")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:5000")
	v.SetDefault("BACKEND_TIMEOUT", "30s")

	v.SetDefault("SESSION_IDLE_TIMEOUT", "30m")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("BOARDING_PASS_CACHE_TTL", "1h")
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server port is required")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.BackendBaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.TaskQueue == "" {
		return fmt.Errorf("TASK_QUEUE is required")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("invalid backend timeout: %s", c.BackendTimeout)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("invalid session idle timeout: %s", c.SessionIdleTimeout)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("invalid redis db: %d", c.RedisDB)
	}
	return nil
}

// CacheEnabled reports whether boarding pass artifacts should be cached.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != "" && c.BoardingPassCacheTTL > 0
}
