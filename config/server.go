package config

import "fmt"

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Address                string `json:"address"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.ShutdownTimeoutSeconds == 0 {
		c.ShutdownTimeoutSeconds = 5
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("shutdown_timeout_seconds must not be negative")
	}
	return nil
}
