package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# StockSage Configuration

[monitor]
# Minimum absolute percent change required to trigger an alert
threshold_percent = 1.0
# Polling interval (e.g., "1h", "15m")
interval = "1h"
# Outbound message length limit (SMS segment)
message_limit = 160
# Timezone used for the one-alert-per-day calendar date ("Local" or IANA name)
timezone = "Local"

[quotes]
# Quote provider base URL
base_url = "https://query1.finance.yahoo.com"
# Per-fetch timeout
timeout = "10s"

[server]
host = "0.0.0.0"
port = 8000
# Public webhook URL, used to validate inbound Twilio signatures
webhook_url = ""

[agent]
# LLM model used to explain price movements
model = "gpt-4o-mini"
# Per-generation timeout
timeout = "30s"
`

const credentialsTemplate = `# StockSage Credentials
# WARNING: Keep this file secure! Do not commit to version control.
# Every value here can also be supplied via environment variables:
# TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_PHONE_NUMBER,
# TARGET_PHONE_NUMBER, OPENAI_API_KEY.

[twilio]
account_sid = ""
auth_token = ""
from_number = ""
to_number = ""

[openai]
api_key = ""
`

// createTemplateConfig writes a commented config template so a fresh
// install has something to edit. Defaults still apply, so this is not
// an error.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

// createTemplateCredentials writes a credentials template. Credentials
// may also arrive via environment variables, so a missing file is not
// fatal here; RequireCredentials decides that at startup.
func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return nil
}
