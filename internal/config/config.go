// Package config provides configuration management for the stock tracking application.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Monitor     MonitorConfig `mapstructure:"monitor"`
	Quotes      QuotesConfig  `mapstructure:"quotes"`
	Server      ServerConfig  `mapstructure:"server"`
	Agent       AgentConfig   `mapstructure:"agent"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// MonitorConfig holds the polling and alerting configuration.
type MonitorConfig struct {
	ThresholdPercent float64       `mapstructure:"threshold_percent"` // minimum abs % change to alert
	Interval         time.Duration `mapstructure:"interval"`          // polling interval
	MessageLimit     int           `mapstructure:"message_limit"`     // transport length limit
	Timezone         string        `mapstructure:"timezone"`          // calendar-day timezone for dedup
}

// QuotesConfig holds quote provider configuration.
type QuotesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds the inbound webhook server configuration.
type ServerConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	WebhookURL string `mapstructure:"webhook_url"` // public URL, used for signature validation
}

// AgentConfig holds AI analysis configuration.
type AgentConfig struct {
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Credentials holds API credentials.
type Credentials struct {
	Twilio TwilioCredentials `mapstructure:"twilio"`
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// TwilioCredentials holds the SMS transport credentials and identities.
type TwilioCredentials struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	FromNumber string `mapstructure:"from_number"` // number messages are sent from
	ToNumber   string `mapstructure:"to_number"`   // the single authorized user
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stocksage"
	}
	return filepath.Join(home, ".config", "stocksage")
}

// DefaultDBPath returns the default SQLite database path.
func DefaultDBPath() string {
	return filepath.Join(DefaultConfigDir(), "stocksage.db")
}

// Default returns a configuration with every tunable at its default,
// without touching the filesystem or environment. Credentials are empty.
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			ThresholdPercent: 1.0,
			Interval:         time.Hour,
			MessageLimit:     160,
			Timezone:         "Local",
		},
		Quotes: QuotesConfig{
			BaseURL: "https://query1.finance.yahoo.com",
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Agent: AgentConfig{
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, apperrors.Wrap(err, "loading config.toml")
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, apperrors.Wrap(err, "loading credentials.toml")
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("monitor.threshold_percent", 1.0)
	v.SetDefault("monitor.interval", "1h")
	v.SetDefault("monitor.message_limit", 160)
	v.SetDefault("monitor.timezone", "Local")
	v.SetDefault("quotes.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("quotes.timeout", "10s")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("agent.model", "gpt-4o-mini")
	v.SetDefault("agent.timeout", "30s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			// Fall through with defaults only.
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

// applyEnvOverrides applies environment variable overrides. The variable
// names match the ones the deployment scripts already export.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Credentials.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Credentials.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_PHONE_NUMBER"); v != "" {
		cfg.Credentials.Twilio.FromNumber = v
	}
	if v := os.Getenv("TARGET_PHONE_NUMBER"); v != "" {
		cfg.Credentials.Twilio.ToNumber = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Server.WebhookURL = v
	}
	if v := os.Getenv("STOCKSAGE_QUOTES_URL"); v != "" {
		cfg.Quotes.BaseURL = v
	}
}

// Validate validates the configuration values that have no safe fallback.
func (c *Config) Validate() error {
	if c.Monitor.ThresholdPercent <= 0 {
		return apperrors.NewConfigError("monitor.threshold_percent", "must be positive")
	}
	if c.Monitor.Interval < time.Minute {
		return apperrors.NewConfigError("monitor.interval", "must be at least 1m")
	}
	if c.Monitor.MessageLimit <= 0 {
		return apperrors.NewConfigError("monitor.message_limit", "must be positive")
	}
	if _, err := c.Location(); err != nil {
		return apperrors.NewConfigError("monitor.timezone", "unknown timezone: "+c.Monitor.Timezone)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewConfigError("server.port", "must be a valid port")
	}
	return nil
}

// RequireCredentials checks the credentials needed to run the full
// service. Missing credentials are a startup-fatal condition for the
// serve command; diagnostic commands skip this check.
func (c *Config) RequireCredentials() error {
	t := c.Credentials.Twilio
	switch {
	case t.AccountSID == "":
		return apperrors.NewConfigError("twilio.account_sid", "required")
	case t.AuthToken == "":
		return apperrors.NewConfigError("twilio.auth_token", "required")
	case t.FromNumber == "":
		return apperrors.NewConfigError("twilio.from_number", "required")
	case t.ToNumber == "":
		return apperrors.NewConfigError("twilio.to_number", "required")
	}
	return nil
}

// HasOpenAI reports whether an OpenAI key is configured. Without it the
// service still runs, with templated alert texts only.
func (c *Config) HasOpenAI() bool {
	return c.Credentials.OpenAI.APIKey != ""
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Monitor.Timezone == "" || c.Monitor.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Monitor.Timezone)
}
