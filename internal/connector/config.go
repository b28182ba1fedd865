package connector

import (
	"errors"
	"time"
)

// ErrNotConfigured is returned when no API key is available. Callers
// treat it as "feature disabled", not as a hard failure.
var ErrNotConfigured = errors.New("connector API key not configured")

const defaultBaseURL = "https://backend.composio.dev"

// Config holds the credentials for one connector integration.
type Config struct {
	BaseURL      string        // connector service base URL
	APIKey       string        // integration API key
	AuthConfigID string        // auth-config id for account linking
	Timeout      time.Duration // request timeout
}

// Validate validates the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNotConfigured
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
