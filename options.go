package chatbot

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds how long Hello, Say and Request wait for a
// matching reply.
const DefaultRequestTimeout = 30 * time.Second

// ClientOption configures a chatbot client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	logger         *slog.Logger
	onSend         func(string)
	onReceive      func(*Frame)
	onError        func(error)
	tokens         TokenAcquirer
	dialer         Dialer
	httpClient     *http.Client
	sessionID      string
	platform       string
	requestTimeout time.Duration
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		platform:       DefaultPlatform,
		requestTimeout: DefaultRequestTimeout,
	}
}

// WithLogger sets a structured logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithOnSend sets a callback invoked before each frame is sent.
func WithOnSend(fn func(raw string)) ClientOption {
	return func(c *clientConfig) {
		c.onSend = fn
	}
}

// WithOnReceive sets a callback invoked after each frame is decoded.
func WithOnReceive(fn func(*Frame)) ClientOption {
	return func(c *clientConfig) {
		c.onReceive = fn
	}
}

// WithOnError sets a callback for errors that do not end the session,
// such as malformed frames or failed keepalive replies.
func WithOnError(fn func(error)) ClientOption {
	return func(c *clientConfig) {
		c.onError = fn
	}
}

// WithTokenAcquirer replaces the HTTP token exchange.
func WithTokenAcquirer(a TokenAcquirer) ClientOption {
	return func(c *clientConfig) {
		c.tokens = a
	}
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(d Dialer) ClientOption {
	return func(c *clientConfig) {
		c.dialer = d
	}
}

// WithHTTPClient sets the HTTP client used for token acquisition and the
// WebSocket handshake.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithSessionID sets the session id sent during token acquisition.
// Ids that are not canonical UUID v4 strings are replaced with a fresh one.
func WithSessionID(id string) ClientOption {
	return func(c *clientConfig) {
		c.sessionID = id
	}
}

// WithPlatform overrides DefaultPlatform.
func WithPlatform(platform string) ClientOption {
	return func(c *clientConfig) {
		if platform != "" {
			c.platform = platform
		}
	}
}

// WithRequestTimeout sets the deadline applied to each correlated request.
// Zero disables it; the caller's context still applies.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.requestTimeout = d
	}
}
