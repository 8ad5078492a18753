package coinmarket

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://pro-api.coinmarketcap.com"
	defaultTimeout = 10 * time.Second

	apiKeyHeader = "X-CMC_PRO_API_KEY"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=coinmarket_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches historical quote series from the upstream market data
// provider. The provider is rate limited and occasionally returns malformed
// payloads; callers are expected to treat every error as a trigger for their
// own fallbacks.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	apiKey     string
	timeout    time.Duration
	logger     *slog.Logger
}

// Option is a configuration option for the client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each upstream call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new upstream client.
func NewClient(apiKey string, options ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiKey:     apiKey,
		timeout:    defaultTimeout,
		logger:     slog.Default(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}
