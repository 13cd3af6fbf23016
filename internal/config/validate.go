package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePortal(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePortal() error {
	parsed, err := url.Parse(c.Portal.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("portal.base_url must be an absolute URL, got %q", c.Portal.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("portal.base_url must use http or https, got %q", parsed.Scheme)
	}
	return nil
}

func (c *Config) validateJobs() error {
	if c.Jobs.PollInterval < 1 {
		return errors.New("jobs.poll_interval must be at least 1 second")
	}
	if c.Jobs.MaxAttempts < 1 {
		return errors.New("jobs.max_attempts must be at least 1")
	}
	if c.Jobs.ProgressEvery < 1 {
		return errors.New("jobs.progress_every must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
