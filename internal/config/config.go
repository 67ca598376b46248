// Package config resolves the arena server's runtime configuration
// from command-line flags and environment variables: listening
// address, default LLM endpoint/credential/model per side, the retry
// budget, the shared-credential bypass password, and the exchange-log
// path. Credential-shaped values come from the environment, never
// flags, so they never end up in a shell history or a process list.
package config

import (
	"flag"
	"fmt"
	"os"
)

// Config is the fully-resolved set of values cmd/arenad needs to wire
// up a Registry and an httpapi server.
type Config struct {
	APIHost string
	APIPort int

	PIDPath string
	PIDLock bool

	// DefaultWhite/DefaultBlack seed an LLM side whenever a start
	// request omits that side's endpoint, credential, or model.
	DefaultWhite Endpoint
	DefaultBlack Endpoint

	MaxRetries int

	BaseTimeMs  int64
	IncrementMs int64

	BypassPassword string

	ExchangeLogPath string
}

// Endpoint is one side's default LLM connection.
type Endpoint struct {
	APIURL     string
	Credential string
	Model      string
}

// Load parses args against a fresh FlagSet (never the package-global
// flag.CommandLine, so tests can call Load repeatedly without a
// "flag redefined" panic) and layers in environment-variable
// overrides for credential-shaped values.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("arenad", flag.ContinueOnError)

	var (
		apiHost = fs.String("api-host", "localhost", "API server host")
		apiPort = fs.Int("api-port", 8080, "API server port")

		pidPath = fs.String("pid", "", "Optional path to write PID file")
		pidLock = fs.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")

		maxRetries = fs.Int("max-retries", 3, "Illegal/unparseable move attempts allowed before a side forfeits")

		baseTimeMs  = fs.Int64("base-time-ms", 10*60*1000, "Default per-side clock allotment in milliseconds")
		incrementMs = fs.Int64("increment-ms", 5000, "Default per-move clock increment in milliseconds")

		exchangeLogPath = fs.String("exchange-log", "exchanges.jsonl", "Path to the append-only LLM exchange log")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *pidLock && *pidPath == "" {
		return nil, fmt.Errorf("config: -pid-lock requires -pid")
	}

	cfg := &Config{
		APIHost:    *apiHost,
		APIPort:    *apiPort,
		PIDPath:    *pidPath,
		PIDLock:    *pidLock,
		MaxRetries: *maxRetries,
		DefaultWhite: Endpoint{
			APIURL:     os.Getenv("ARENA_WHITE_API_URL"),
			Credential: os.Getenv("ARENA_WHITE_API_KEY"),
			Model:      os.Getenv("ARENA_WHITE_MODEL"),
		},
		DefaultBlack: Endpoint{
			APIURL:     os.Getenv("ARENA_BLACK_API_URL"),
			Credential: os.Getenv("ARENA_BLACK_API_KEY"),
			Model:      os.Getenv("ARENA_BLACK_MODEL"),
		},
		BaseTimeMs:      *baseTimeMs,
		IncrementMs:     *incrementMs,
		BypassPassword:  os.Getenv("ARENA_BYPASS_PASSWORD"),
		ExchangeLogPath: *exchangeLogPath,
	}
	return cfg, nil
}

// Addr returns the "host:port" listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}
