package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

// Config holds the transport settings. It is filled from app.Config.
type Config struct {
	Client Client

	// Timeout bounds a single request. Zero means 30s.
	Timeout time.Duration

	UserAgent string

	// MaxBodyBytes caps how much of a response body is read. Zero means 8 MiB.
	MaxBodyBytes int64

	// MaxRedirects is the number of redirects followed before the last
	// response is returned as is. Zero means 10; negative disables them.
	MaxRedirects int
}

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 8 << 20
	defaultMaxRedirects = 10
)
