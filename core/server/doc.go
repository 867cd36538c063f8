// Package server holds the HTTP server configuration.
//
// While the cmd package handles the server startup, this package defines the
// configuration structure and validation for server settings (listen port,
// API key).
package server
