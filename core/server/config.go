package server

import "strconv"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// IsValidPort checks if the configured port is a usable TCP port.
func (c Config) IsValidPort() bool {
	p, err := strconv.Atoi(c.Port)
	if err != nil {
		return false
	}
	return p > 0 && p <= 65535
}
