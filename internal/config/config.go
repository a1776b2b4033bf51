package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "seedline"
	configFileName = "config.yaml"

	defaultAPIURL       = "https://api.seedline.dev"
	defaultHTTPTimeout  = 30 * time.Second
	defaultLogLevel     = "warn"
	defaultLogFormat    = "console"
	defaultCallbackAddr = "127.0.0.1:8753"
	defaultAuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"

	// Public OAuth client id registered for the Seedline CLI. Loopback
	// clients cannot keep a secret, so this is not sensitive.
	defaultGoogleClientID = "832417046917-seedline-cli.apps.googleusercontent.com"

	defaultRenewalInterval = 60 * time.Second
	defaultRenewalLowWater = 5 * time.Minute
)

// Config holds all configuration for the Seedline client
type Config struct {
	// Backend API configuration
	API APIConfig

	// OAuth sign-in configuration
	OAuth OAuthConfig

	// Token renewal configuration
	Renewal RenewalConfig

	// Logging configuration
	Logging LoggingConfig
}

// APIConfig holds backend API configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// OAuthConfig holds the settings for the browser sign-in flow
type OAuthConfig struct {
	ClientID     string
	AuthorizeURL string
	CallbackAddr string // loopback address the provider redirects back to
	Scopes       []string
}

// RenewalConfig holds the proactive token renewal settings
type RenewalConfig struct {
	Interval time.Duration // how often the scheduler checks token expiry
	LowWater time.Duration // remaining lifetime that triggers a refresh
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// fileConfig mirrors Config for the optional YAML config file.
// Durations are strings so users can write "45s" or "10m".
type fileConfig struct {
	APIURL      string `yaml:"api_url"`
	HTTPTimeout string `yaml:"http_timeout"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	OAuth struct {
		ClientID     string   `yaml:"client_id"`
		AuthorizeURL string   `yaml:"authorize_url"`
		CallbackAddr string   `yaml:"callback_addr"`
		Scopes       []string `yaml:"scopes"`
	} `yaml:"oauth"`

	Renewal struct {
		Interval string `yaml:"interval"`
		LowWater string `yaml:"low_water"`
	} `yaml:"renewal"`
}

// FilePath returns the path of the user config file (~/.config/seedline/config.yaml)
func FilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName, configFileName), nil
}

// Load loads configuration from defaults, the optional user config file,
// and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	file, err := loadFile()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: firstNonEmpty(os.Getenv("SEEDLINE_API_URL"), file.APIURL, defaultAPIURL),
		},
		OAuth: OAuthConfig{
			ClientID:     firstNonEmpty(os.Getenv("SEEDLINE_OAUTH_CLIENT_ID"), file.OAuth.ClientID, defaultGoogleClientID),
			AuthorizeURL: firstNonEmpty(os.Getenv("SEEDLINE_OAUTH_AUTHORIZE_URL"), file.OAuth.AuthorizeURL, defaultAuthorizeURL),
			CallbackAddr: firstNonEmpty(os.Getenv("SEEDLINE_OAUTH_CALLBACK_ADDR"), file.OAuth.CallbackAddr, defaultCallbackAddr),
			Scopes:       file.OAuth.Scopes,
		},
		Logging: LoggingConfig{
			Level:  firstNonEmpty(os.Getenv("LOG_LEVEL"), file.LogLevel, defaultLogLevel),
			Format: firstNonEmpty(os.Getenv("LOG_FORMAT"), file.LogFormat, defaultLogFormat),
		},
	}

	if len(cfg.OAuth.Scopes) == 0 {
		cfg.OAuth.Scopes = []string{"openid", "email", "profile"}
	}

	cfg.API.Timeout, err = durationSetting("SEEDLINE_HTTP_TIMEOUT", file.HTTPTimeout, defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}

	cfg.Renewal.Interval, err = durationSetting("SEEDLINE_RENEWAL_INTERVAL", file.Renewal.Interval, defaultRenewalInterval)
	if err != nil {
		return nil, err
	}

	cfg.Renewal.LowWater, err = durationSetting("SEEDLINE_RENEWAL_LOW_WATER", file.Renewal.LowWater, defaultRenewalLowWater)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile reads the user config file, returning an empty fileConfig if absent
func loadFile() (*fileConfig, error) {
	var file fileConfig

	path, err := FilePath()
	if err != nil {
		// No home directory (e.g. bare CI environments): env and defaults still apply
		return &file, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &file, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &file, nil
}

// durationSetting resolves a duration from env var, config file value, or default
func durationSetting(envKey, fileValue string, fallback time.Duration) (time.Duration, error) {
	raw := firstNonEmpty(os.Getenv(envKey), fileValue)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q for %s: %w", raw, envKey, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration for %s must be positive, got %q", envKey, raw)
	}

	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
