package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	UPS       UPSConfig      `yaml:"ups"`
	Telegram  TelegramConfig `yaml:"telegram"`
	SMS       SMSConfig      `yaml:"sms"`
	Notify    NotifyConfig   `yaml:"notify"`
	State     StateConfig    `yaml:"state"`
	Shipments []Shipment     `yaml:"shipments"`
	Logging   LoggingConfig  `yaml:"logging"`
}

// UPSConfig holds UPS API credentials and endpoints
type UPSConfig struct {
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	AuthURL        string `yaml:"auth_url"`
	TrackURL       string `yaml:"track_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c UPSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TelegramConfig holds Telegram bot credentials and polling settings
type TelegramConfig struct {
	BotToken           string `yaml:"bot_token"`
	ChatID             string `yaml:"chat_id"`
	BaseURL            string `yaml:"base_url"`
	PollTimeoutSeconds int    `yaml:"poll_timeout_seconds"`
	IdleSeconds        int    `yaml:"idle_seconds"`
}

// PollTimeout returns the long-poll server-side wait as a duration
func (c TelegramConfig) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}

// Idle returns the sleep between empty poll responses as a duration
func (c TelegramConfig) Idle() time.Duration {
	return time.Duration(c.IdleSeconds) * time.Second
}

// SMSConfig holds SMS gateway credentials
type SMSConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	BaseURL    string `yaml:"base_url"`
}

// NotifyConfig selects the outbound notification transport
type NotifyConfig struct {
	Transport string `yaml:"transport"` // "telegram" or "sms"
}

// StateConfig selects and configures the state store backend
type StateConfig struct {
	Type      string `yaml:"type"` // "file" or "redis"
	FilePath  string `yaml:"file_path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisKey  string `yaml:"redis_key"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Shipment is one tracked parcel: the provider-assigned tracking number
// plus an optional display nickname.
type Shipment struct {
	TrackingNumber string `yaml:"tracking_number"`
	Nickname       string `yaml:"nickname"`
}

// DisplayName returns the nickname, falling back to the tracking number.
func (s Shipment) DisplayName() string {
	if n := strings.TrimSpace(s.Nickname); n != "" {
		return n
	}
	return strings.TrimSpace(s.TrackingNumber)
}

// Load reads and parses the configuration file. An empty path yields a
// config built from defaults only (everything supplied via env overrides).
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.UPS.AuthURL == "" {
		cfg.UPS.AuthURL = "https://onlinetools.ups.com/security/v1/oauth/token"
	}
	if cfg.UPS.TrackURL == "" {
		cfg.UPS.TrackURL = "https://onlinetools.ups.com/api/track/v1/details"
	}
	if cfg.UPS.TimeoutSeconds == 0 {
		cfg.UPS.TimeoutSeconds = 30
	}
	if cfg.Telegram.BaseURL == "" {
		cfg.Telegram.BaseURL = "https://api.telegram.org"
	}
	if cfg.Telegram.PollTimeoutSeconds == 0 {
		cfg.Telegram.PollTimeoutSeconds = 25
	}
	if cfg.Telegram.IdleSeconds == 0 {
		cfg.Telegram.IdleSeconds = 2
	}
	if cfg.SMS.BaseURL == "" {
		cfg.SMS.BaseURL = "https://api.twilio.com"
	}
	if cfg.Notify.Transport == "" {
		cfg.Notify.Transport = "telegram"
	}
	if cfg.State.Type == "" {
		cfg.State.Type = "file"
	}
	if cfg.State.FilePath == "" {
		cfg.State.FilePath = "ups_status.json"
	}
	if cfg.State.RedisKey == "" {
		cfg.State.RedisKey = "parcel-monitor:shipments"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if v := os.Getenv("UPS_CLIENT_ID"); v != "" {
		cfg.UPS.ClientID = v
	}
	if v := os.Getenv("UPS_CLIENT_SECRET"); v != "" {
		cfg.UPS.ClientSecret = v
	}
	if v := os.Getenv("UPS_AUTH_URL"); v != "" {
		cfg.UPS.AuthURL = v
	}
	if v := os.Getenv("UPS_TRACK_URL"); v != "" {
		cfg.UPS.TrackURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SMS_ACCOUNT_SID"); v != "" {
		cfg.SMS.AccountSID = v
	}
	if v := os.Getenv("SMS_AUTH_TOKEN"); v != "" {
		cfg.SMS.AuthToken = v
	}
	if v := os.Getenv("SMS_FROM"); v != "" {
		cfg.SMS.From = v
	}
	if v := os.Getenv("SMS_TO"); v != "" {
		cfg.SMS.To = v
	}
	if v := os.Getenv("NOTIFY_TRANSPORT"); v != "" {
		cfg.Notify.Transport = v
	}
	if v := os.Getenv("STATE_TYPE"); v != "" {
		cfg.State.Type = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.State.FilePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.State.RedisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Shipment list: comma-separated tracking numbers with an index-aligned
	// nickname list. A blank or missing nickname falls back to the number.
	if trackings := os.Getenv("UPS_TRACKINGS"); trackings != "" {
		cfg.Shipments = ParseShipments(trackings, os.Getenv("UPS_NICKNAMES"))
	}

	return cfg, nil
}

// ParseShipments builds the shipment list from comma-separated tracking
// number and nickname strings. Nicknames align by index; extra nicknames
// are ignored and blank entries fall back to the tracking number.
func ParseShipments(trackings, nicknames string) []Shipment {
	numbers := strings.Split(trackings, ",")
	var names []string
	if nicknames != "" {
		names = strings.Split(nicknames, ",")
	}

	shipments := make([]Shipment, 0, len(numbers))
	for i, num := range numbers {
		num = strings.TrimSpace(num)
		if num == "" {
			continue
		}
		s := Shipment{TrackingNumber: num}
		if i < len(names) {
			s.Nickname = strings.TrimSpace(names[i])
		}
		shipments = append(shipments, s)
	}
	return shipments
}

// Validate checks that the configuration is usable for a poll pass.
func (c *Config) Validate() error {
	if c.UPS.ClientID == "" || c.UPS.ClientSecret == "" {
		return fmt.Errorf("config: UPS client credentials are required")
	}
	if len(c.Shipments) == 0 {
		return fmt.Errorf("config: at least one shipment is required")
	}
	switch c.Notify.Transport {
	case "telegram":
		if c.Telegram.BotToken == "" || c.Telegram.ChatID == "" {
			return fmt.Errorf("config: telegram transport requires bot_token and chat_id")
		}
	case "sms":
		if c.SMS.AccountSID == "" || c.SMS.AuthToken == "" || c.SMS.From == "" || c.SMS.To == "" {
			return fmt.Errorf("config: sms transport requires account_sid, auth_token, from and to")
		}
	default:
		return fmt.Errorf("config: unknown notify transport %q", c.Notify.Transport)
	}
	switch c.State.Type {
	case "file", "redis":
	default:
		return fmt.Errorf("config: unknown state store type %q", c.State.Type)
	}
	return nil
}
