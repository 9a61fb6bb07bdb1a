package webclient

import "context"

// WebClient performs outbound HTTP for the LLM backend and the link checker.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}
