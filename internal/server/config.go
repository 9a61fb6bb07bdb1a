package server

import "github.com/escuriola/edaitorial/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address for the API server (the CLI
	// commands use the orchestrator in-process and never need it).
	ListenAddr string

	// AllowedOrigins restricts CORS and websocket origins. Empty allows any.
	AllowedOrigins []string

	Logger logging.Logger
}
