// Package api provides a read-only HTTP API for sharing stored quiz papers.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string
}
