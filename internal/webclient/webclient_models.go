package webclient

import (
	"net/http"
	"time"
)

// Request is one outbound call.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte

	// Timeout bounds this request in addition to the client timeout.
	Timeout time.Duration
}

// Response is a fully read reply.
type Response struct {
	Request    *Request
	StatusCode int
	Headers    http.Header
	Body       []byte

	// FinalURL is the URL that answered once redirects were followed.
	FinalURL string

	// Truncated is set when Body was cut at the client's body limit.
	Truncated bool

	Elapsed time.Duration
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
