package chatbot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// State is the connection state of a Client.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed"
)

// Client is one chatbot session. It is safe for concurrent use by
// multiple goroutines. A closed Client cannot be reconnected.
type Client struct {
	cfg       clientConfig
	tokens    TokenAcquirer
	dialer    Dialer
	sessionID string
	listeners *registry
	pending   *pendingTable

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.RWMutex
	state     State
	transport Transport
	token     string
	closeErr  error
	attempt   *connectAttempt
	// looping is set once a read loop owns the close notification.
	looping bool
}

// connectAttempt lets concurrent Connect calls wait for the one in flight.
type connectAttempt struct {
	done chan struct{}
	err  error
}

// New creates an idle Client. Call Connect to open the session.
func New(opts ...ClientOption) *Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tokens := cfg.tokens
	if tokens == nil {
		tokens = NewHTTPTokenAcquirer("", cfg.httpClient)
	}

	dialer := cfg.dialer
	if dialer == nil {
		httpClient := cfg.httpClient
		dialer = func(ctx context.Context, address string) (Transport, error) {
			return Dial(ctx, address, &DialOptions{HTTPClient: httpClient})
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		cfg:       cfg,
		tokens:    tokens,
		dialer:    dialer,
		sessionID: NormalizeSessionID(cfg.sessionID),
		listeners: newRegistry(),
		pending:   newPendingTable(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StateIdle,
	}
}

// On registers a listener for kind. Listeners for the same kind are called
// in registration order.
func (c *Client) On(kind EventKind, l Listener) *Client {
	c.listeners.add(kind, l)
	return c
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Token returns the bearer token of the current connection.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SessionID returns the session id used for token acquisition.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Err returns the error that ended the session, if the transport failed.
func (c *Client) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closeErr
}

// Done returns a channel closed when the session ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Connect acquires a token and opens the transport at address, or at
// DefaultAddress when address is empty. It returns once the transport is
// open and the connect listeners have run. Connect on an open client does
// nothing; Connect on a connecting client waits for the attempt in flight
// and returns its result.
func (c *Client) Connect(ctx context.Context, address string) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateOpen:
		c.mu.Unlock()
		return nil
	case StateConnecting:
		attempt := c.attempt
		c.mu.Unlock()
		select {
		case <-attempt.done:
			return attempt.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	attempt := &connectAttempt{done: make(chan struct{})}
	c.state = StateConnecting
	c.attempt = attempt
	c.mu.Unlock()

	attempt.err = c.open(ctx, address)
	close(attempt.done)
	return attempt.err
}

// open runs one connect attempt for a client in StateConnecting.
func (c *Client) open(ctx context.Context, address string) error {
	// The token is in hand before the socket opens, so an auth challenge
	// is never answered without one.
	token, err := c.tokens.AcquireToken(ctx, c.sessionID, c.cfg.platform)
	if err != nil {
		c.abortConnect()
		var acqErr *AcquisitionError
		if !errors.As(err, &acqErr) {
			err = &AcquisitionError{Err: err}
		}
		return err
	}

	if address == "" {
		address = DefaultAddress
	}
	transport, err := c.dialer(ctx, address)
	if err != nil {
		c.abortConnect()
		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			err = &ConnectionError{Op: "dial", URL: address, Err: err}
		}
		return err
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		transport.Close()
		return ErrClosed
	}
	c.token = token
	c.transport = transport
	c.state = StateOpen
	c.looping = true
	c.mu.Unlock()

	if c.cfg.logger != nil {
		c.cfg.logger.Info("connected",
			slog.String("address", address),
			slog.String("session_id", c.sessionID),
		)
	}

	c.listeners.publish(&Notification{Kind: EventConnect, Client: c})

	go c.readLoop(transport)

	return nil
}

func (c *Client) abortConnect() {
	c.mu.Lock()
	if c.state == StateConnecting {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// Hello sends the greeting and returns the bot's opening message.
func (c *Client) Hello(ctx context.Context) (*Message, error) {
	ev, err := c.Request(ctx, ActionHello, nil)
	if err != nil {
		return nil, err
	}
	return DecodeMessage(ev)
}

// Say sends a free-text query and returns the bot's reply.
func (c *Client) Say(ctx context.Context, text string) (*Message, error) {
	ev, err := c.Request(ctx, ActionSearch, SayData{Text: text})
	if err != nil {
		return nil, err
	}
	return DecodeMessage(ev)
}

// Request sends a correlated application event and waits for the event
// echoing its uuid. data is omitted from the frame when nil.
//
// The wait ends at the first of: a matching reply, the request timeout
// (ErrTimeout), ctx cancellation, or session close (ErrClosed).
// Concurrent requests resolve independently.
func (c *Client) Request(ctx context.Context, action string, data any) (*Event, error) {
	id := uuid.New().String()

	ch, ok := c.pending.register(id)
	if !ok {
		return nil, ErrClosed
	}

	raw, err := NewEventFrame(action, Request{Action: action, UUID: id, Data: data})
	if err != nil {
		c.pending.remove(id)
		return nil, &SendError{Op: action, Err: err}
	}

	if err := c.send(ctx, raw); err != nil {
		c.pending.remove(id)
		return nil, &SendError{Op: action, Err: err}
	}

	if c.cfg.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.requestTimeout)
		defer cancel()
	}

	select {
	case ev := <-ch:
		return ev, nil
	case <-c.done:
		c.pending.remove(id)
		select {
		case ev := <-ch:
			return ev, nil
		default:
		}
		return nil, ErrClosed
	case <-ctx.Done():
		c.pending.remove(id)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// Close ends the session. Closing a closed client is a no-op.
//
// Once the client has connected, the close listeners run on the read loop
// after the last frame it delivered, so Close may return before they do.
// Otherwise they run before Close returns.
func (c *Client) Close() error {
	closed, looping, err := c.shutdown(nil)
	if closed && !looping {
		c.publishClose()
	}
	return err
}

// shutdown is the single path to StateClosed for both local and
// transport-initiated closes. closed reports whether this call made the
// transition; looping reports whether a read loop will publish close.
func (c *Client) shutdown(cause error) (closed, looping bool, err error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return false, false, nil
	}
	c.state = StateClosed
	c.closeErr = cause
	transport := c.transport
	c.transport = nil
	looping = c.looping
	c.mu.Unlock()

	c.cancel()
	c.pending.closeAll()
	close(c.done)

	if transport != nil {
		err = transport.Close()
	}

	if c.cfg.logger != nil {
		if cause != nil {
			c.cfg.logger.Info("session closed", slog.String("error", cause.Error()))
		} else {
			c.cfg.logger.Info("session closed")
		}
	}

	return true, looping, err
}

func (c *Client) publishClose() {
	c.listeners.publish(&Notification{Kind: EventClose, Client: c, Err: c.Err()})
}

// readLoop reads frames from the transport and classifies them in order.
// It publishes close after its last frame, whichever side ended the session.
func (c *Client) readLoop(transport Transport) {
	defer c.publishClose()

	for {
		raw, err := transport.Receive(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil || errors.Is(err, ErrClosed) {
				err = nil
			}
			c.shutdown(err)
			return
		}

		c.handleFrame(raw)
	}
}

// handleFrame decodes one frame and runs the protocol step for its code.
func (c *Client) handleFrame(raw string) {
	frame, err := DecodeFrame(raw)
	if err != nil {
		if c.cfg.logger != nil {
			c.cfg.logger.Warn("dropping malformed frame", slog.String("error", err.Error()))
		}
		c.reportError(err)
		return
	}

	// Observability hook
	if c.cfg.onReceive != nil {
		c.cfg.onReceive(frame)
	}

	if c.cfg.logger != nil {
		c.cfg.logger.Debug("received frame",
			slog.Int("code", int(frame.Code)),
			slog.Int("size", len(raw)),
		)
	}

	c.listeners.publish(&Notification{Kind: EventMessage, Client: c, Frame: frame})

	switch frame.Code {
	case CodeAuthChallenge:
		if err := c.send(c.ctx, NewAuthFrame(c.Token())); err != nil {
			c.reportError(&SendError{Op: "auth", Err: err})
			return
		}
		c.listeners.publish(&Notification{Kind: EventLogin, Client: c, Frame: frame})

	case CodePing:
		c.listeners.publish(&Notification{Kind: EventPing, Client: c, Frame: frame})
		pong, _ := EncodeFrame(CodePong, nil)
		if err := c.send(c.ctx, pong); err != nil {
			c.reportError(&SendError{Op: "pong", Err: err})
		}

	case CodeEvent:
		ev, ok := frame.Event()
		if !ok || ev.UUID == "" {
			return
		}
		if c.pending.resolve(ev.UUID, ev) && c.cfg.logger != nil {
			c.cfg.logger.Debug("resolved request",
				slog.String("event", ev.Name),
				slog.String("uuid", ev.UUID),
			)
		}
	}
}

// send writes raw through the current transport.
func (c *Client) send(ctx context.Context, raw string) error {
	c.mu.RLock()
	state := c.state
	transport := c.transport
	c.mu.RUnlock()

	if state == StateClosed {
		return ErrClosed
	}
	if transport == nil {
		return ErrNotConnected
	}

	// Observability hook
	if c.cfg.onSend != nil {
		c.cfg.onSend(raw)
	}

	if c.cfg.logger != nil {
		c.cfg.logger.Debug("sending frame", slog.Int("size", len(raw)))
	}

	return transport.Send(ctx, raw)
}

func (c *Client) reportError(err error) {
	if c.cfg.onError != nil {
		c.cfg.onError(err)
	}
}
