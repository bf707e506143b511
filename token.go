package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	// DefaultPlatform identifies the embedding context to the service.
	DefaultPlatform = "epgu_desc"

	// DefaultTokenEndpoint is where session ids are exchanged for tokens.
	DefaultTokenEndpoint = "https://bot.gosuslugi.ru/api/v2/init"

	maxTokenResponse = 1 << 20
)

var sessionIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-4[a-fA-F0-9]{3}-[89abAB][a-fA-F0-9]{3}-[a-fA-F0-9]{12}$`)

// TokenAcquirer exchanges a session id for a bearer token.
type TokenAcquirer interface {
	AcquireToken(ctx context.Context, sessionID, platform string) (string, error)
}

// TokenAcquirerFunc adapts a function to the TokenAcquirer interface.
type TokenAcquirerFunc func(ctx context.Context, sessionID, platform string) (string, error)

// AcquireToken calls f.
func (f TokenAcquirerFunc) AcquireToken(ctx context.Context, sessionID, platform string) (string, error) {
	return f(ctx, sessionID, platform)
}

// ValidSessionID reports whether id has the canonical UUID v4 text form.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// NewSessionID returns a random UUID v4 string.
func NewSessionID() string {
	return uuid.New().String()
}

// NormalizeSessionID returns id unchanged when valid, otherwise a fresh id.
func NormalizeSessionID(id string) string {
	if ValidSessionID(id) {
		return id
	}
	return NewSessionID()
}

// HTTPTokenAcquirer acquires tokens from the service's init endpoint.
type HTTPTokenAcquirer struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewHTTPTokenAcquirer creates an acquirer. Empty endpoint and nil client
// fall back to DefaultTokenEndpoint and http.DefaultClient.
func NewHTTPTokenAcquirer(endpoint string, client *http.Client) *HTTPTokenAcquirer {
	if endpoint == "" {
		endpoint = DefaultTokenEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTokenAcquirer{Endpoint: endpoint, HTTPClient: client}
}

type initRequest struct {
	Platform  string `json:"platform"`
	SessionID string `json:"sessionId"`
}

type initResponse struct {
	Token string `json:"token"`
}

// AcquireToken performs a single POST to the init endpoint. It does not retry.
func (a *HTTPTokenAcquirer) AcquireToken(ctx context.Context, sessionID, platform string) (string, error) {
	if platform == "" {
		platform = DefaultPlatform
	}
	body, err := json.Marshal(initRequest{
		Platform:  platform,
		SessionID: NormalizeSessionID(sessionID),
	})
	if err != nil {
		return "", &AcquisitionError{URL: a.Endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &AcquisitionError{URL: a.Endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &AcquisitionError{URL: a.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponse))
	if err != nil {
		return "", &AcquisitionError{URL: a.Endpoint, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AcquisitionError{
			URL:    a.Endpoint,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected response: %s", truncate(string(data), 128)),
		}
	}

	var out initResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &AcquisitionError{URL: a.Endpoint, Status: resp.StatusCode, Err: err}
	}
	if out.Token == "" {
		return "", &AcquisitionError{URL: a.Endpoint, Status: resp.StatusCode, Err: errors.New("response has no token")}
	}
	return out.Token, nil
}
