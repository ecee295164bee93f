package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Version  string         `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Platform PlatformConfig `yaml:"platform"`
	Sync     SyncConfig     `yaml:"sync"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// ServerConfig contains server-related configuration.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	HTTPPort        int           `yaml:"http_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
}

// APIConfig contains API-related configuration.
type APIConfig struct {
	Enabled  bool       `yaml:"enabled"`
	BasePath string     `yaml:"base_path"`
	Auth     AuthConfig `yaml:"auth"`
}

// AuthConfig contains API authentication configuration.
type AuthConfig struct {
	Enabled    bool     `yaml:"enabled"`
	APIKeys    []string `yaml:"api_keys"`
	HeaderName string   `yaml:"header_name"`
}

// PlatformConfig describes the remote platform endpoints and app credentials.
type PlatformConfig struct {
	AuthURL        string        `yaml:"auth_url"`
	APIURL         string        `yaml:"api_url"`
	ClientKey      string        `yaml:"client_key"`
	ClientSecret   string        `yaml:"client_secret"`
	RedirectURI    string        `yaml:"redirect_uri"`
	PageSize       int           `yaml:"page_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// SyncConfig contains orchestrator and scheduler configuration.
type SyncConfig struct {
	Concurrency    int                  `yaml:"concurrency"`
	MaxPages       int                  `yaml:"max_pages"`
	DirectoryBatch int                  `yaml:"directory_batch"`
	Scheduler      SchedulerConfig      `yaml:"scheduler"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// SchedulerConfig contains periodic sync configuration.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// CircuitBreakerConfig contains circuit breaker configuration.
type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

// TelegramConfig contains the sync digest notification configuration.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Host:            "127.0.0.1",
			HTTPPort:        8411,
			ShutdownTimeout: 30 * time.Second,
			LogLevel:        "info",
			LogFormat:       "json",
		},
		API: APIConfig{
			Enabled:  true,
			BasePath: "/api/v1",
			Auth: AuthConfig{
				HeaderName: "X-API-Key",
			},
		},
		Platform: PlatformConfig{
			PageSize:       20,
			RequestTimeout: 15 * time.Second,
		},
		Sync: SyncConfig{
			Concurrency:    4,
			MaxPages:       500,
			DirectoryBatch: 10,
			Scheduler: SchedulerConfig{
				Interval: time.Hour,
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 3,
				Timeout:          5 * time.Minute,
			},
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 0 and 65535, got %d", c.Server.HTTPPort)
	}
	switch c.Server.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.log_level must be one of debug, info, warn, error, got %q", c.Server.LogLevel)
	}
	if c.Platform.PageSize <= 0 || c.Platform.PageSize > 20 {
		return fmt.Errorf("platform.page_size must be between 1 and 20, got %d", c.Platform.PageSize)
	}
	if c.Platform.RequestTimeout <= 0 {
		return fmt.Errorf("platform.request_timeout must be positive, got %s", c.Platform.RequestTimeout)
	}
	if c.Sync.Concurrency <= 0 {
		return fmt.Errorf("sync.concurrency must be positive, got %d", c.Sync.Concurrency)
	}
	if c.Sync.MaxPages <= 0 {
		return fmt.Errorf("sync.max_pages must be positive, got %d", c.Sync.MaxPages)
	}
	if c.Sync.DirectoryBatch <= 0 {
		return fmt.Errorf("sync.directory_batch must be positive, got %d", c.Sync.DirectoryBatch)
	}
	if c.Sync.Scheduler.Enabled && c.Sync.Scheduler.Interval <= 0 {
		return fmt.Errorf("sync.scheduler.interval must be positive when the scheduler is enabled")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
	}
	return nil
}
