package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset variables
// leave the current value untouched; malformed durations are ignored.
//
// Recognized variables:
//
//	ENDPOINT_ADDR, DATABASE_DSN, SECRET_KEY, ACCESS_TOKEN_VALIDITY,
//	OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL, ADVICE_REQUEST_TIMEOUT
//
// Duration values use Go syntax, e.g. "30m" or "45s".
func parseEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ENDPOINT_ADDR", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setDuration("ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	setString("OPENAI_API_KEY", &config.OpenAIAPIKey)
	setString("OPENAI_BASE_URL", &config.OpenAIBaseURL)
	setString("OPENAI_MODEL", &config.OpenAIModel)
	setDuration("ADVICE_REQUEST_TIMEOUT", &config.AdviceRequestTimeout)
}
