package chatbot

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := &ConnectionError{Op: "dial", Err: underlying}

	assert.Equal(t, "chatbot: dial: connection refused", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestConnectionError_WithURL(t *testing.T) {
	err := &ConnectionError{Op: "dial", URL: "wss://example.com", Err: errors.New("connection refused")}

	assert.Equal(t, "chatbot: dial wss://example.com: connection refused", err.Error())
}

func TestSendError(t *testing.T) {
	underlying := errors.New("write failed")
	err := &SendError{Op: "hello_broker", Err: underlying}

	assert.Equal(t, "chatbot: send hello_broker: write failed", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestAcquisitionError(t *testing.T) {
	underlying := errors.New("bad gateway")
	err := &AcquisitionError{URL: "https://example.com/init", Status: 502, Err: underlying}
	assert.Equal(t, "chatbot: acquire token https://example.com/init: status 502: bad gateway", err.Error())

	err = &AcquisitionError{URL: "https://example.com/init", Err: underlying}
	assert.Equal(t, "chatbot: acquire token https://example.com/init: bad gateway", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestFrameError_TruncatesRaw(t *testing.T) {
	err := &FrameError{Raw: "x" + strings.Repeat("y", 200), Err: errors.New("missing event code")}

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "chatbot: malformed frame \"xyyy"), msg)
	assert.Contains(t, msg, "...\": missing event code")
}

func TestDecodeError(t *testing.T) {
	underlying := errors.New("not absolute")
	err := &DecodeError{Field: "result.outside[0].link", Err: underlying}

	assert.Equal(t, "chatbot: decode result.outside[0].link: not absolute", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrClosed", ErrClosed, "chatbot: session closed"},
		{"ErrNotConnected", ErrNotConnected, "chatbot: not connected"},
		{"ErrTimeout", ErrTimeout, "chatbot: request timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestErrorsIs(t *testing.T) {
	wrapped := &SendError{Op: "search_broker", Err: ErrClosed}
	assert.ErrorIs(t, wrapped, ErrClosed)

	var sendErr *SendError
	require.ErrorAs(t, wrapped, &sendErr)
	assert.Equal(t, "search_broker", sendErr.Op)
}
