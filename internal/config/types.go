package config

import (
	"fmt"
	"time"
)

// Config is the top-level pdfqa configuration, corresponding to .pdfqa.yml.
type Config struct {
	BackendURL      string   `yaml:"backend_url" koanf:"backend_url"`
	UploadField     string   `yaml:"upload_field" koanf:"upload_field"`
	NotificationTTL Duration `yaml:"notification_ttl" koanf:"notification_ttl"`
	RecentLimit     int      `yaml:"recent_limit" koanf:"recent_limit"`
	ListenPort      int      `yaml:"listen_port" koanf:"listen_port"`
	MaxUploadMB     int      `yaml:"max_upload_mb" koanf:"max_upload_mb"`
	LogLevel        string   `yaml:"log_level" koanf:"log_level"`
	LogFormat       string   `yaml:"log_format" koanf:"log_format"`
	LogFile         string   `yaml:"log_file,omitempty" koanf:"log_file"`
}

// Duration is a time.Duration written as "5s" in YAML and env vars.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalYAML writes the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalText parses strings such as "5s" or "1500ms".
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}
