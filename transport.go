package chatbot

import (
	"context"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// DefaultAddress is the service's socket.io WebSocket endpoint.
const DefaultAddress = "wss://bot.gosuslugi.ru/api/v2/ws/socket.io/?EIO=4&transport=websocket"

// Transport sends and receives raw text frames.
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, text string) error
	Receive(ctx context.Context) (string, error)
	Close() error
}

// Dialer opens a Transport to address.
type Dialer func(ctx context.Context, address string) (Transport, error)

// DialOptions configures the WebSocket connection.
type DialOptions struct {
	// HTTPHeader specifies additional HTTP headers to send during handshake.
	HTTPHeader http.Header

	// HTTPClient is the HTTP client used for the handshake.
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// Dial connects to a chatbot socket and returns a Transport.
func Dial(ctx context.Context, address string, opts *DialOptions) (Transport, error) {
	dialOpts := &websocket.DialOptions{}
	if opts != nil {
		if opts.HTTPHeader != nil {
			dialOpts.HTTPHeader = opts.HTTPHeader.Clone()
		}
		if opts.HTTPClient != nil {
			dialOpts.HTTPClient = opts.HTTPClient
		}
	}

	conn, _, err := websocket.Dial(ctx, address, dialOpts)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", URL: address, Err: err}
	}

	// Replies can carry long HTML content.
	conn.SetReadLimit(4 * 1024 * 1024)

	return &wsTransport{conn: conn}, nil
}

// wsTransport implements Transport over WebSocket.
type wsTransport struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// Send writes a text frame.
func (t *wsTransport) Send(ctx context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	if err := t.conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}

	return nil
}

// Receive reads the next frame from the server.
func (t *wsTransport) Receive(ctx context.Context) (string, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		// An orderly close from either side ends the session without a cause.
		if closed || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return "", ErrClosed
		}
		return "", &ConnectionError{Op: "read", Err: err}
	}

	return string(data), nil
}

// Close closes the transport.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	return t.conn.Close(websocket.StatusNormalClosure, "")
}
