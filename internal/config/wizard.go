package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to pdfqa! Let's point it at your inference server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend address.
	backendPrompt := promptui.Prompt{
		Label:    "Backend URL",
		Default:  cfg.BackendURL,
		Validate: validateBackendURL,
	}
	backendURL, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	cfg.BackendURL = backendURL

	// 2. How long notifications stay up.
	ttlPrompt := promptui.Prompt{
		Label:   "Notification display time",
		Default: cfg.NotificationTTL.String(),
		Validate: func(s string) error {
			d, err := time.ParseDuration(s)
			if err != nil {
				return errors.New("enter a duration such as 5s")
			}
			if d <= 0 || d > time.Minute {
				return errors.New("must be between 0 and 1m")
			}
			return nil
		},
	}
	ttlStr, err := ttlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("notification ttl: %w", err)
	}
	ttl, _ := time.ParseDuration(ttlStr)
	cfg.NotificationTTL = Duration(ttl)

	// 3. Dashboard port.
	portPrompt := promptui.Prompt{
		Label:    "Dashboard port",
		Default:  strconv.Itoa(cfg.ListenPort),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dashboard port: %w", err)
	}
	cfg.ListenPort, _ = strconv.Atoi(portStr)

	// 4. Log level.
	levelPrompt := promptui.Select{
		Label: "Log level",
		Items: []string{"info", "debug", "warn", "error"},
	}
	_, level, err := levelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log level selection: %w", err)
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("port must be a number")
	}
	if n < 1 || n > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}
