package config

import (
	"encoding/json"
	"os"

	"github.com/dkravetz/sixtyfix/internal/flagx"
	"github.com/dkravetz/sixtyfix/internal/timex"
)

// JsonConfig is an intermediate DTO for reading a JSON configuration file.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "24h" and integer nanoseconds. After unmarshalling,
// its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr             string         `json:"endpoint_addr"`
	BaseURL                  string         `json:"base_url"`
	DatabaseDSN              string         `json:"database_dsn"`
	SecretKey                string         `json:"secret_key"`
	SessionTokenValidity     timex.Duration `json:"session_token_validity"`
	RequireEmailVerification *bool          `json:"require_email_verification"`

	MailServer        string `json:"mail_server"`
	MailPort          int    `json:"mail_port"`
	MailUseTLS        *bool  `json:"mail_use_tls"`
	MailUsername      string `json:"mail_username"`
	MailPassword      string `json:"mail_password"`
	MailDefaultSender string `json:"mail_default_sender"`

	AIAPIKey      string         `json:"ai_api_key"`
	AIModel       string         `json:"ai_model"`
	AIBaseURL     string         `json:"ai_base_url"`
	AIMaxTokens   int            `json:"ai_max_tokens"`
	AITemperature float64        `json:"ai_temperature"`
	AITimeout     timex.Duration `json:"ai_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. Unset fields leave the
// current value untouched. A missing or malformed file panics, since running
// with a half-applied config is worse than not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddr, c.EndpointAddr)
	overlayString(&config.BaseURL, c.BaseURL)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.SecretKey, c.SecretKey)
	if c.SessionTokenValidity.Duration != 0 {
		config.SessionTokenValidity = c.SessionTokenValidity.Duration
	}
	if c.RequireEmailVerification != nil {
		config.RequireEmailVerification = *c.RequireEmailVerification
	}

	overlayString(&config.Mail.Server, c.MailServer)
	if c.MailPort != 0 {
		config.Mail.Port = c.MailPort
	}
	if c.MailUseTLS != nil {
		config.Mail.UseTLS = *c.MailUseTLS
	}
	overlayString(&config.Mail.Username, c.MailUsername)
	overlayString(&config.Mail.Password, c.MailPassword)
	overlayString(&config.Mail.DefaultSender, c.MailDefaultSender)

	overlayString(&config.AI.APIKey, c.AIAPIKey)
	overlayString(&config.AI.Model, c.AIModel)
	overlayString(&config.AI.BaseURL, c.AIBaseURL)
	if c.AIMaxTokens != 0 {
		config.AI.MaxTokens = c.AIMaxTokens
	}
	if c.AITemperature != 0 {
		config.AI.Temperature = c.AITemperature
	}
	if c.AITimeout.Duration != 0 {
		config.AI.Timeout = c.AITimeout.Duration
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
