package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first if present; real environment
// variables win over .env entries (godotenv does not overwrite).
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.EndpointAddr, "ADDRESS")
	setString(&config.BaseURL, "BASE_URL")
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SecretKey, "SECRET_KEY")
	setDuration(&config.SessionTokenValidity, "SESSION_TOKEN_VALIDITY")
	setBool(&config.RequireEmailVerification, "REQUIRE_EMAIL_VERIFICATION")

	setString(&config.Mail.Server, "MAIL_SERVER")
	setInt(&config.Mail.Port, "MAIL_PORT")
	setBool(&config.Mail.UseTLS, "MAIL_USE_TLS")
	setString(&config.Mail.Username, "MAIL_USERNAME")
	setString(&config.Mail.Password, "MAIL_PASSWORD")
	setString(&config.Mail.DefaultSender, "MAIL_DEFAULT_SENDER")

	setString(&config.AI.APIKey, "OPENAI_API_KEY")
	setString(&config.AI.Model, "OPENAI_MODEL")
	setString(&config.AI.BaseURL, "OPENAI_BASE_URL")
	setDuration(&config.AI.Timeout, "OPENAI_TIMEOUT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
