package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/Ilakiancs/StockSage/internal/errors"
)

func TestValidateDefaults(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.Monitor.ThresholdPercent = 0 }},
		{"negative threshold", func(c *Config) { c.Monitor.ThresholdPercent = -1 }},
		{"interval too short", func(c *Config) { c.Monitor.Interval = time.Second }},
		{"zero message limit", func(c *Config) { c.Monitor.MessageLimit = 0 }},
		{"unknown timezone", func(c *Config) { c.Monitor.Timezone = "Not/AZone" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, apperrors.ErrConfigInvalid) {
				t.Errorf("err = %v, want ErrConfigInvalid", err)
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireCredentials(); !errors.Is(err, apperrors.ErrConfigInvalid) {
		t.Errorf("empty credentials: err = %v, want ErrConfigInvalid", err)
	}

	cfg.Credentials.Twilio = TwilioCredentials{
		AccountSID: "AC123",
		AuthToken:  "token",
		FromNumber: "+15550001111",
		ToNumber:   "+15550002222",
	}
	if err := cfg.RequireCredentials(); err != nil {
		t.Errorf("complete credentials: %v", err)
	}
}

func TestLoadCreatesTemplates(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Defaults applied.
	if cfg.Monitor.ThresholdPercent != 1.0 {
		t.Errorf("threshold = %v, want 1.0", cfg.Monitor.ThresholdPercent)
	}
	if cfg.Monitor.Interval != time.Hour {
		t.Errorf("interval = %v, want 1h", cfg.Monitor.Interval)
	}
	if cfg.Monitor.MessageLimit != 160 {
		t.Errorf("message limit = %d, want 160", cfg.Monitor.MessageLimit)
	}

	// Template files written for the next run.
	for _, name := range []string{"config.toml", "credentials.toml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected template %s: %v", name, err)
		}
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[monitor]
threshold_percent = 2.5
interval = "30m"
message_limit = 140

[server]
port = 9000
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Monitor.ThresholdPercent != 2.5 {
		t.Errorf("threshold = %v, want 2.5", cfg.Monitor.ThresholdPercent)
	}
	if cfg.Monitor.Interval != 30*time.Minute {
		t.Errorf("interval = %v, want 30m", cfg.Monitor.Interval)
	}
	if cfg.Monitor.MessageLimit != 140 {
		t.Errorf("message limit = %d, want 140", cfg.Monitor.MessageLimit)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.Quotes.BaseURL == "" {
		t.Error("quotes base URL default missing")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "AC999")
	t.Setenv("TARGET_PHONE_NUMBER", "+15559998888")
	t.Setenv("STOCKSAGE_QUOTES_URL", "http://localhost:9999")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Credentials.Twilio.AccountSID != "AC999" {
		t.Errorf("account SID = %q", cfg.Credentials.Twilio.AccountSID)
	}
	if cfg.Credentials.Twilio.ToNumber != "+15559998888" {
		t.Errorf("to number = %q", cfg.Credentials.Twilio.ToNumber)
	}
	if cfg.Quotes.BaseURL != "http://localhost:9999" {
		t.Errorf("quotes URL = %q", cfg.Quotes.BaseURL)
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	cfg.Monitor.Timezone = "America/New_York"
	loc, err := cfg.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc.String() != "America/New_York" {
		t.Errorf("location = %v", loc)
	}

	cfg.Monitor.Timezone = "Local"
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Error("Local must resolve to time.Local")
	}
}
