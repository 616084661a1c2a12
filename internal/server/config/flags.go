package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/astroadvisor/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-k string   completion service API key
//	-e string   completion service base URL
//	-m string   completion model name
//	-w int      completion request timeout, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-k", "-e", "-m", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.OpenAIAPIKey, "k", config.OpenAIAPIKey, "completion service API key")
	fs.StringVar(&config.OpenAIBaseURL, "e", config.OpenAIBaseURL, "completion service base URL")
	fs.StringVar(&config.OpenAIModel, "m", config.OpenAIModel, "completion model name")

	adviceRequestTimeout := fs.Int("w", int(config.AdviceRequestTimeout.Seconds()), "advice_request_timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.AdviceRequestTimeout = time.Duration(*adviceRequestTimeout) * time.Second
}
