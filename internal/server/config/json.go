package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/astroadvisor/internal/flagx"
	"github.com/dmitrijs2005/astroadvisor/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	OpenAIAPIKey                string         `json:"openai_api_key"`
	OpenAIBaseURL               string         `json:"openai_base_url"`
	OpenAIModel                 string         `json:"openai_model"`
	AdviceRequestTimeout        timex.Duration `json:"advice_request_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.OpenAIAPIKey = c.OpenAIAPIKey
	config.OpenAIBaseURL = c.OpenAIBaseURL
	config.OpenAIModel = c.OpenAIModel
	config.AdviceRequestTimeout = c.AdviceRequestTimeout.Duration
}
