package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string   `envconfig:"PORT" default:"8080"`
	Environment    string   `envconfig:"ENVIRONMENT" default:"production"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string   `envconfig:"LOG_FORMAT" default:"json"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	// DatabaseURL is a postgres:// URL or a sqlite: / file: path
	DatabaseURL string `envconfig:"DATABASE_URL" default:"sqlite:./data/calendar.db"`
	RedisURL    string `envconfig:"REDIS_URL"`

	LINE LINEConfig

	// AdminUserIDs is the LINE user allow-list for mutating commands.
	// An empty list authorizes everyone.
	AdminUserIDs   []string `envconfig:"LINE_USER_ID"`
	CronAPIKey     string   `envconfig:"CRON_API_KEY"`
	AdminJWTSecret string   `envconfig:"ADMIN_JWT_SECRET"`

	Timezone              string        `envconfig:"TIMEZONE" default:"Asia/Taipei"`
	GroupSendDelay        time.Duration `envconfig:"GROUP_SEND_DELAY" default:"200ms"`
	ActivityRetentionDays int           `envconfig:"ACTIVITY_RETENTION_DAYS" default:"1"`
	WebhookDedupTTL       time.Duration `envconfig:"WEBHOOK_DEDUP_TTL" default:"24h"`
	ActivityCacheTTL      time.Duration `envconfig:"ACTIVITY_CACHE_TTL" default:"5m"`
}

// LINEConfig holds Messaging API credentials and transport tuning
type LINEConfig struct {
	ChannelAccessToken string        `envconfig:"LINE_CHANNEL_ACCESS_TOKEN"`
	ChannelSecret      string        `envconfig:"LINE_CHANNEL_SECRET"`
	ChannelID          string        `envconfig:"LINE_CHANNEL_ID"`
	APIBaseURL         string        `envconfig:"LINE_API_BASE_URL" default:"https://api.line.me"`
	Timeout            time.Duration `envconfig:"LINE_API_TIMEOUT" default:"10s"`
	RetryAttempts      int           `envconfig:"LINE_RETRY_ATTEMPTS" default:"3"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	cfg.AdminUserIDs = trimAll(cfg.AdminUserIDs)

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration that the HTTP server cannot run without
func (c *Config) Validate() error {
	var missing []string
	if c.LINE.ChannelSecret == "" {
		missing = append(missing, "LINE_CHANNEL_SECRET")
	}
	if c.LINE.ChannelAccessToken == "" && c.LINE.ChannelID == "" {
		missing = append(missing, "LINE_CHANNEL_ACCESS_TOKEN or LINE_CHANNEL_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Location resolves the configured time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsDevelopment reports whether the service runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "staging"
}

// trimAll drops empty entries and surrounding whitespace
func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
