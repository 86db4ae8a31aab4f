package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// Realtime
	HeartbeatInterval time.Duration `envconfig:"HEARTBEAT_INTERVAL" default:"30s"`
	SubscriberBuffer  int           `envconfig:"SUBSCRIBER_BUFFER" default:"64"`

	// Escalation
	HelplineNumber          string        `envconfig:"HELPLINE_NUMBER" default:"14416"`
	AlertPublishTimeout     time.Duration `envconfig:"ALERT_PUBLISH_TIMEOUT" default:"5s"`
	EscalationWebhookURL    string        `envconfig:"ESCALATION_WEBHOOK_URL"`
	EscalationWebhookSecret string        `envconfig:"ESCALATION_WEBHOOK_SECRET"`

	// Chat provider
	ChatProvider string `envconfig:"CHAT_PROVIDER" default:"mock"`
	GeminiURL    string `envconfig:"GEMINI_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-pro"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// Rate limiting for publish, chat and SOS routes
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"120"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.HeartbeatInterval <= 0 {
		return errors.New("HEARTBEAT_INTERVAL must be positive")
	}
	if c.SubscriberBuffer <= 0 {
		return errors.New("SUBSCRIBER_BUFFER must be positive")
	}
	if c.HelplineNumber == "" {
		return errors.New("HELPLINE_NUMBER must not be empty")
	}
	switch c.ChatProvider {
	case "mock":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required when CHAT_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported CHAT_PROVIDER %q", c.ChatProvider)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
