package chatbot

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrClosed       = errors.New("chatbot: session closed")
	ErrNotConnected = errors.New("chatbot: not connected")
	ErrTimeout      = errors.New("chatbot: request timed out")
)

// ConnectionError represents a transport-level error.
type ConnectionError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("chatbot: %s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("chatbot: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// SendError represents an error while sending a frame.
type SendError struct {
	Op  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("chatbot: send %s: %v", e.Op, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// AcquisitionError is returned when the bearer token could not be obtained.
// The transport is never opened after one of these.
type AcquisitionError struct {
	URL    string
	Status int
	Err    error
}

func (e *AcquisitionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("chatbot: acquire token %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("chatbot: acquire token %s: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// FrameError reports an inbound frame that could not be decoded.
type FrameError struct {
	Raw string
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("chatbot: malformed frame %q: %v", truncate(e.Raw, 64), e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// DecodeError reports an event body that does not have the shape of a
// chatbot message.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("chatbot: decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
