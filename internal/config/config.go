package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/pdfqa/internal/backend"
	"github.com/ziadkadry99/pdfqa/internal/notify"
	"github.com/ziadkadry99/pdfqa/internal/recent"
)

// DefaultPath is where init writes the config file.
const DefaultPath = ".pdfqa.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BackendURL:      backend.DefaultBaseURL,
		UploadField:     backend.DefaultUploadField,
		NotificationTTL: Duration(notify.DefaultTTL),
		RecentLimit:     recent.DefaultLimit,
		ListenPort:      8501,
		MaxUploadMB:     50,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PDFQA_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// PDFQA_BACKEND_URL -> backend_url, etc.
	if err := k.Load(env.Provider("PDFQA_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PDFQA_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if err := validateBackendURL(c.BackendURL); err != nil {
		return err
	}
	if c.UploadField == "" {
		return fmt.Errorf("upload_field is required")
	}
	if c.NotificationTTL.Std() <= 0 {
		return fmt.Errorf("notification_ttl must be positive")
	}
	if c.NotificationTTL.Std() > time.Minute {
		return fmt.Errorf("notification_ttl must be at most 1m")
	}
	if c.RecentLimit < 1 || c.RecentLimit > 50 {
		return fmt.Errorf("recent_limit must be between 1 and 50")
	}
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port %d out of range", c.ListenPort)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be at least 1")
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format %q: must be console or json", c.LogFormat)
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func validateBackendURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("backend_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend_url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend_url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend_url %q: missing host", raw)
	}
	return nil
}
