package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard core.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Fyers   FyersConfig   `mapstructure:"fyers"`
	Poll    PollConfig    `mapstructure:"poll"`
	Session SessionConfig `mapstructure:"session"`
}

type ServerConfig struct {
	Port              string `mapstructure:"port"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
}

type FyersConfig struct {
	AppID       string `mapstructure:"app_id"`
	SecretID    string `mapstructure:"secret_id"`
	AccessToken string `mapstructure:"access_token"` // optional manual-entry token
	RedirectURI string `mapstructure:"redirect_uri"`

	QuotesURL       string `mapstructure:"quotes_url"`
	ValidateAuthURL string `mapstructure:"validate_auth_url"`
	AuthorizeURL    string `mapstructure:"authorize_url"`

	// Simulated selects the demo data path instead of live fetches.
	Simulated bool `mapstructure:"simulated"`

	// Relays are "endpoint|mode" specs tried in order on transport
	// failures; an empty spec is the direct route.
	Relays []string `mapstructure:"relays"`
}

type PollConfig struct {
	IntervalMs           int `mapstructure:"interval_ms"`
	FetchTimeoutSec      int `mapstructure:"fetch_timeout_sec"`
	MinRequestIntervalMs int `mapstructure:"min_request_interval_ms"`
}

type SessionConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// Load reads configuration from an optional .env file, environment
// variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Surface .env values as real env vars when the file exists.
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on system env vars")
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.request_timeout_sec", 15)

	v.SetDefault("fyers.app_id", "")
	v.SetDefault("fyers.secret_id", "")
	v.SetDefault("fyers.access_token", "")
	v.SetDefault("fyers.redirect_uri", "http://localhost:8080/api/auth/callback")
	v.SetDefault("fyers.quotes_url", "https://api.fyers.in/data-rest/v2/quotes/")
	v.SetDefault("fyers.validate_auth_url", "https://api.fyers.in/api/v2/validate-authcode")
	v.SetDefault("fyers.authorize_url", "https://api.fyers.in/api/v2/generate-authcode")
	v.SetDefault("fyers.simulated", false)
	v.SetDefault("fyers.relays", []string{""})

	v.SetDefault("poll.interval_ms", 2000)
	v.SetDefault("poll.fetch_timeout_sec", 30)
	v.SetDefault("poll.min_request_interval_ms", 0)

	v.SetDefault("session.db_path", "data/session.db")

	// Map dot-notation keys to underscore env vars (fyers.app_id -> FYERS_APP_ID).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "server.port", "server.request_timeout_sec")
	bindEnv(v, "fyers.app_id", "fyers.secret_id", "fyers.access_token", "fyers.redirect_uri")
	bindEnv(v, "fyers.quotes_url", "fyers.validate_auth_url", "fyers.authorize_url")
	bindEnv(v, "fyers.simulated", "fyers.relays")
	bindEnv(v, "poll.interval_ms", "poll.fetch_timeout_sec", "poll.min_request_interval_ms")
	bindEnv(v, "session.db_path")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	if cfg.Poll.IntervalMs <= 0 {
		return nil, fmt.Errorf("poll.interval_ms must be positive")
	}
	if !cfg.Fyers.Simulated && cfg.Fyers.AppID == "" && cfg.Fyers.AccessToken == "" {
		log.Println("warning: live mode without FYERS_APP_ID; connect via the API before polling")
	}
	return &cfg, nil
}

// bindEnv is a helper to bind multiple keys at once.
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
