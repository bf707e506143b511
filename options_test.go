package chatbot

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClientConfig(t *testing.T) {
	cfg := defaultClientConfig()

	assert.Equal(t, DefaultPlatform, cfg.platform)
	assert.Equal(t, DefaultRequestTimeout, cfg.requestTimeout)
}

func TestClientOption_Platform(t *testing.T) {
	cfg := defaultClientConfig()
	WithPlatform("widget")(&cfg)
	assert.Equal(t, "widget", cfg.platform)

	WithPlatform("")(&cfg)
	assert.Equal(t, "widget", cfg.platform, "empty value should be ignored")
}

func TestClientOption_RequestTimeout(t *testing.T) {
	cfg := defaultClientConfig()
	WithRequestTimeout(5 * time.Second)(&cfg)

	assert.Equal(t, 5*time.Second, cfg.requestTimeout)
}

func TestClientOption_Hooks(t *testing.T) {
	cfg := clientConfig{}
	WithOnSend(func(string) {})(&cfg)
	WithOnReceive(func(*Frame) {})(&cfg)
	WithOnError(func(error) {})(&cfg)
	WithLogger(slog.Default())(&cfg)

	assert.NotNil(t, cfg.onSend)
	assert.NotNil(t, cfg.onReceive)
	assert.NotNil(t, cfg.onError)
	assert.NotNil(t, cfg.logger)
}

func TestNew_SessionID(t *testing.T) {
	valid := "0f8fad5b-d9cb-469f-a165-70867728950e"
	assert.Equal(t, valid, New(WithSessionID(valid)).SessionID())

	got := New(WithSessionID("not-a-uuid")).SessionID()
	assert.NotEqual(t, "not-a-uuid", got)
	assert.True(t, ValidSessionID(got), got)

	assert.True(t, ValidSessionID(New().SessionID()))
}

func TestNew_DefaultTokenAcquirer(t *testing.T) {
	httpClient := &http.Client{Timeout: time.Second}
	client := New(WithHTTPClient(httpClient))

	acquirer, ok := client.tokens.(*HTTPTokenAcquirer)
	require.True(t, ok, "tokens = %T", client.tokens)
	assert.Equal(t, DefaultTokenEndpoint, acquirer.Endpoint)
	assert.Same(t, httpClient, acquirer.HTTPClient)
}

func TestNew_CustomTokenAcquirer(t *testing.T) {
	called := false
	client := New(WithTokenAcquirer(TokenAcquirerFunc(func(ctx context.Context, sessionID, platform string) (string, error) {
		called = true
		return "x", nil
	})))

	_, err := client.tokens.AcquireToken(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, called, "custom acquirer not used")
}
