package venue

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ConnectionState describes the client's connectivity to the venue.
type ConnectionState string

const (
	// StateDisconnected is the initial state before Connect.
	StateDisconnected ConnectionState = "disconnected"
	// StateConnected means the authenticated handshake succeeded.
	StateConnected ConnectionState = "connected"
	// StateDegraded means credentials are absent or rejected; only public
	// data endpoints are usable.
	StateDegraded ConnectionState = "degraded"
)

// Client provides access to the Kalshi REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration

	mu    sync.RWMutex
	state ConnectionState
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
		state:        StateDisconnected,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSigner sets the request signer for credentialed endpoints.
func WithSigner(s *Signer) ClientOption {
	return func(c *Client) {
		c.signer = s
	}
}

// State returns the current connectivity state for health reporting.
func (c *Client) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(s ConnectionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
