// Copyright 2025-2026 Azisaba Network

package mirror

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// WebhookCredentials identifies a Discord webhook endpoint. The token is a
// secret and must never be logged.
type WebhookCredentials struct {
	ID    string
	Token string
}

// Config holds the sync bot configuration. Values come from an optional
// YAML file with environment variable fallbacks; the env var names match
// the original deployment (CHANNEL_1_ID, WEBHOOK_1_URL, ...).
type Config struct {
	ChannelOneID  string `yaml:"channel_one_id"`
	ChannelTwoID  string `yaml:"channel_two_id"`
	WebhookOneURL string `yaml:"webhook_one_url"`
	WebhookTwoURL string `yaml:"webhook_two_url"`
	BotToken      string `yaml:"bot_token"`

	// DataDir is where thread pairing records are persisted. Created on
	// startup if absent. Defaults to "data".
	DataDir string `yaml:"data_dir"`
	// LogLevel is a zerolog level name (trace, debug, info, ...).
	LogLevel string `yaml:"log_level"`

	webhookOne WebhookCredentials
	webhookTwo WebhookCredentials
}

// LoadConfig reads the config file at path (if it exists), applies env
// var fallbacks, validates the result and parses the webhook URLs. A
// missing file is fine as long as the environment provides everything.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Config may come entirely from the environment.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.PostProcess(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills empty fields from environment variables.
func (c *Config) applyEnv() {
	for _, f := range []struct {
		env string
		dst *string
	}{
		{"CHANNEL_1_ID", &c.ChannelOneID},
		{"CHANNEL_2_ID", &c.ChannelTwoID},
		{"WEBHOOK_1_URL", &c.WebhookOneURL},
		{"WEBHOOK_2_URL", &c.WebhookTwoURL},
		{"BOT_TOKEN", &c.BotToken},
		{"DATA_DIR", &c.DataDir},
		{"LOG_LEVEL", &c.LogLevel},
	} {
		if *f.dst == "" {
			*f.dst = os.Getenv(f.env)
		}
	}
}

// Validate reports every missing required setting at once so a broken
// deployment can be fixed in one pass.
func (c *Config) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"channel_one_id (CHANNEL_1_ID)", c.ChannelOneID},
		{"channel_two_id (CHANNEL_2_ID)", c.ChannelTwoID},
		{"webhook_one_url (WEBHOOK_1_URL)", c.WebhookOneURL},
		{"webhook_two_url (WEBHOOK_2_URL)", c.WebhookTwoURL},
		{"bot_token (BOT_TOKEN)", c.BotToken},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.ChannelOneID == c.ChannelTwoID {
		return fmt.Errorf("channel_one_id and channel_two_id must differ")
	}
	return nil
}

var webhookURLRe = regexp.MustCompile(`^https://(?:[a-z0-9-]+\.)?discord(?:app)?\.com/api(?:/v\d+)?/webhooks/(\d+)/([A-Za-z0-9_-]+)$`)

// parseWebhookURL extracts the webhook ID and token from a Discord
// webhook URL.
func parseWebhookURL(rawURL string) (WebhookCredentials, error) {
	m := webhookURLRe.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return WebhookCredentials{}, fmt.Errorf("not a Discord webhook URL")
	}
	return WebhookCredentials{ID: m[1], Token: m[2]}, nil
}

// PostProcess parses the configured webhook URLs into credentials.
func (c *Config) PostProcess() error {
	var err error
	if c.webhookOne, err = parseWebhookURL(c.WebhookOneURL); err != nil {
		return fmt.Errorf("webhook_one_url: %w", err)
	}
	if c.webhookTwo, err = parseWebhookURL(c.WebhookTwoURL); err != nil {
		return fmt.Errorf("webhook_two_url: %w", err)
	}
	return nil
}

// PartnerChannel returns the mirror partner of one of the two configured
// channels. Returns false for any other channel ID.
func (c *Config) PartnerChannel(channelID string) (string, bool) {
	switch channelID {
	case c.ChannelOneID:
		return c.ChannelTwoID, true
	case c.ChannelTwoID:
		return c.ChannelOneID, true
	}
	return "", false
}

// WebhookFor returns the webhook credentials used to post into the given
// configured channel.
func (c *Config) WebhookFor(channelID string) (WebhookCredentials, bool) {
	switch channelID {
	case c.ChannelOneID:
		return c.webhookOne, true
	case c.ChannelTwoID:
		return c.webhookTwo, true
	}
	return WebhookCredentials{}, false
}
