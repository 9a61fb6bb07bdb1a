package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/webclient"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
	defaultMaxTokens  = 4096
	previewWidth      = 200

	FormatOpenAI    = "openai"
	FormatAnthropic = "anthropic"

	systemPrompt = "You are an editorial quality assistant. You review web content for SEO, accessibility, spelling and broken links. Return ONLY valid JSON."
)

// Provider presets for known LLM providers
var providerDefaults = map[string]struct {
	BaseURL   string
	Model     string
	APIFormat string
}{
	"perplexity": {BaseURL: "https://api.perplexity.ai/chat/completions", Model: "sonar", APIFormat: FormatOpenAI},
	"openai":     {BaseURL: "https://api.openai.com/v1/chat/completions", Model: "gpt-4o-mini", APIFormat: FormatOpenAI},
	"anthropic":  {BaseURL: "https://api.anthropic.com/v1/messages", Model: "claude-sonnet-4-5-20250929", APIFormat: FormatAnthropic},
	"ollama":     {BaseURL: "http://localhost:11434/v1/chat/completions", Model: "llama3", APIFormat: FormatOpenAI},
}

// ChatMessage represents a message in the chat API
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the OpenAI-compatible request body
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// ChatResponse represents the OpenAI-compatible response
type ChatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// AnthropicRequest represents the Anthropic /v1/messages request body
type AnthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// AnthropicResponse represents the Anthropic /v1/messages response
type AnthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client implements Backend over HTTP.
type Client struct {
	provider  string
	apiFormat string
	apiKey    string
	model     string
	baseURL   string
	retries   int
	delay     time.Duration

	wc     webclient.WebClient
	logger logging.Logger
}

// Option allows configuring the client
type Option func(*Client)

// WithWebClient sets the transport used for provider calls.
func WithWebClient(wc webclient.WebClient) Option {
	return func(c *Client) {
		if wc != nil {
			c.wc = wc
		}
	}
}

// WithModel sets a custom model
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAPIFormat sets the wire format ("openai" or "anthropic")
func WithAPIFormat(format string) Option {
	return func(c *Client) {
		if format != "" {
			c.apiFormat = format
		}
	}
}

// WithRetries sets the attempt count and the base delay between attempts.
// The n-th retry waits n*delay.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retries = attempts
		}
		if delay >= 0 {
			c.delay = delay
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new LLM API client.
// provider can be "perplexity", "openai", "anthropic", "ollama", or empty
// (defaults to openai). apiKey can be empty for ollama.
func NewClient(provider, apiKey string, opts ...Option) (*Client, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = "openai"
	}

	defaults := providerDefaults[provider]

	client := &Client{
		provider:  provider,
		apiFormat: defaults.APIFormat,
		apiKey:    apiKey,
		model:     defaults.Model,
		baseURL:   defaults.BaseURL,
		retries:   defaultMaxRetries,
		delay:     defaultRetryDelay,
		logger:    logging.NopLogger{},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.apiFormat == "" {
		client.apiFormat = FormatOpenAI
	}

	// Auto-append standard path if base URL has no path component
	if client.baseURL != "" && !strings.Contains(strings.TrimPrefix(strings.TrimPrefix(client.baseURL, "https://"), "http://"), "/") {
		switch client.apiFormat {
		case FormatAnthropic:
			client.baseURL = strings.TrimRight(client.baseURL, "/") + "/v1/messages"
		default:
			client.baseURL = strings.TrimRight(client.baseURL, "/") + "/v1/chat/completions"
		}
	}

	if client.baseURL == "" {
		return nil, fmt.Errorf("LLM base_url is required for provider %q", provider)
	}
	if client.model == "" {
		return nil, fmt.Errorf("LLM model is required for provider %q", provider)
	}
	if client.apiKey == "" && provider != "ollama" {
		return nil, fmt.Errorf("%w: api_key is required for provider %q", ErrNotConfigured, provider)
	}

	if client.wc == nil {
		wc, err := webclient.NewWebClient(webclient.Config{Client: webclient.ClientNetHTTP}, client.logger)
		if err != nil {
			return nil, fmt.Errorf("create transport: %w", err)
		}
		client.wc = wc
	}
	client.logger = client.logger.With(logging.Field{Key: "component", Value: "llm"},
		logging.Field{Key: "provider", Value: provider})

	return client, nil
}

// Provider returns the provider name.
func (c *Client) Provider() string { return c.provider }

// Model returns the model name.
func (c *Client) Model() string { return c.model }

// Complete sends prompt to the provider and returns the text reply. Server
// errors and transport failures are retried; 4xx answers and undecodable
// envelopes are not.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := c.buildBody(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.delay * time.Duration(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.doRequest(ctx, body)
		if err == nil {
			return text, nil
		}
		var noRetry *errNoRetry
		if errors.As(err, &noRetry) {
			return "", noRetry.err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Warn("llm call failed",
			logging.Field{Key: "attempt", Value: attempt + 1},
			logging.Field{Key: "error", Value: err})
		lastErr = err
	}
	return "", fmt.Errorf("llm call failed after %d attempts: %w", c.retries, lastErr)
}

func (c *Client) buildBody(prompt string) ([]byte, error) {
	if c.apiFormat == FormatAnthropic {
		return json.Marshal(AnthropicRequest{
			Model:     c.model,
			MaxTokens: defaultMaxTokens,
			System:    systemPrompt,
			Messages:  []ChatMessage{{Role: "user", Content: prompt}},
		})
	}
	return json.Marshal(ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
}

func (c *Client) doRequest(ctx context.Context, body []byte) (string, error) {
	hdrs := http.Header{}
	if c.apiFormat == FormatAnthropic {
		hdrs.Set("x-api-key", c.apiKey)
		hdrs.Set("anthropic-version", "2023-06-01")
	} else if c.apiKey != "" {
		hdrs.Set("Authorization", "Bearer "+c.apiKey)
	}
	hdrs.Set("Content-Type", "application/json")

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL,
		Headers: hdrs,
		Body:    body,
	})
	if err != nil {
		return "", err
	}

	if !resp.OK() {
		apiErr := parseAPIError(resp.StatusCode, resp.Body)
		// Only server errors (and rate limiting) are transient
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", &errNoRetry{err: apiErr}
		}
		return "", apiErr
	}

	return c.extractContent(resp.Body)
}

// extractContent parses the response body and returns the text content,
// handling both OpenAI and Anthropic response formats.
func (c *Client) extractContent(respBody []byte) (string, error) {
	if c.apiFormat == FormatAnthropic {
		var anthropicResp AnthropicResponse
		if err := json.Unmarshal(respBody, &anthropicResp); err != nil {
			return "", &errNoRetry{err: fmt.Errorf("unexpected response (not JSON): %s", Preview(string(respBody)))}
		}
		if anthropicResp.Error != nil {
			return "", fmt.Errorf("API error: %s", anthropicResp.Error.Message)
		}
		var sb strings.Builder
		for _, block := range anthropicResp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", &errNoRetry{err: errors.New("no text content in Anthropic response")}
		}
		return sb.String(), nil
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", &errNoRetry{err: fmt.Errorf("unexpected response (not JSON): %s", Preview(string(respBody)))}
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", &errNoRetry{err: errors.New("no choices in response")}
	}
	return chatResp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable message from an API error response.
// If the body is JSON with an error.message field, it uses that; otherwise falls back to raw body.
func parseAPIError(statusCode int, body []byte) error {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return &StatusError{StatusCode: statusCode, Message: parsed.Error.Message}
	}
	return &StatusError{StatusCode: statusCode, Message: Preview(string(body))}
}

// Preview truncates s to a display width suitable for logs and errors.
func Preview(s string) string {
	return runewidth.Truncate(strings.TrimSpace(s), previewWidth, "...")
}

func (c *Client) Close() error {
	return c.wc.Close()
}
