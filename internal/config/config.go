package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vantix/vantix/internal/envutil"
)

type Config struct {
	Addr                string
	APIBaseURL          string
	APITimeout          time.Duration
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	SessionSnapshotPath string
	LogLevel            string
	LogDevelopment      bool
	LoginRate           string
	CookieSecure        bool
}

// Defaults written by `vantix setup`.
func Defaults() map[string]string {
	return map[string]string{
		"CLIENT_ADDR":           ":3000",
		"API_BASE_URL":          "http://127.0.0.1:8000/api/v1",
		"API_TIMEOUT":           "15s",
		"READ_TIMEOUT":          "5s",
		"WRITE_TIMEOUT":         "30s",
		"SESSION_SNAPSHOT_PATH": "data/sessions.json.xz",
		"LOG_LEVEL":             "info",
		"LOG_DEVELOPMENT":       "false",
		"LOGIN_RATE":            "5-M",
		"COOKIE_SECURE":         "false",
	}
}

// Load reads envFile (if present) and then the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := envutil.LoadDotEnv(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := Config{
		Addr:                strings.TrimSpace(v.GetString("CLIENT_ADDR")),
		APIBaseURL:          strings.TrimRight(strings.TrimSpace(v.GetString("API_BASE_URL")), "/"),
		APITimeout:          v.GetDuration("API_TIMEOUT"),
		ReadTimeout:         v.GetDuration("READ_TIMEOUT"),
		WriteTimeout:        v.GetDuration("WRITE_TIMEOUT"),
		SessionSnapshotPath: strings.TrimSpace(v.GetString("SESSION_SNAPSHOT_PATH")),
		LogLevel:            strings.TrimSpace(v.GetString("LOG_LEVEL")),
		LogDevelopment:      v.GetBool("LOG_DEVELOPMENT"),
		LoginRate:           strings.TrimSpace(v.GetString("LOGIN_RATE")),
		CookieSecure:        v.GetBool("COOKIE_SECURE"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("CLIENT_ADDR is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute url", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	return nil
}
