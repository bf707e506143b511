package chatbot

import (
	"encoding/json"
	"errors"
	"strconv"
)

// Code is the numeric prefix of every frame on the socket.
type Code int

const (
	CodeAuthChallenge Code = 0  // server asks for the token
	CodePing          Code = 2  // keepalive probe
	CodePong          Code = 3  // keepalive acknowledgment
	CodeAuth          Code = 40 // token reply
	CodeEvent         Code = 42 // multiplexed application event
)

// Action and event names used by the chatbot service.
const (
	ActionHello  = "hello_broker"
	ActionSearch = "search_broker"

	EventHelloUser      = "hello_user"
	EventSearchResponse = "search_response"
)

// --- Frames ---

// Frame is one decoded unit received from the transport.
type Frame struct {
	Code Code
	// Payload is the JSON remainder decoded into generic Go values, or nil
	// when the frame carried only a code.
	Payload any
	Raw     string
}

// DecodeFrame splits raw into its numeric code and optional JSON payload.
func DecodeFrame(raw string) (*Frame, error) {
	n := 0
	for n < len(raw) && raw[n] >= '0' && raw[n] <= '9' {
		n++
	}
	if n == 0 {
		return nil, &FrameError{Raw: raw, Err: errors.New("missing event code")}
	}

	code, err := strconv.Atoi(raw[:n])
	if err != nil {
		return nil, &FrameError{Raw: raw, Err: err}
	}

	frame := &Frame{Code: Code(code), Raw: raw}
	if len(raw) > n {
		if err := json.Unmarshal([]byte(raw[n:]), &frame.Payload); err != nil {
			return nil, &FrameError{Raw: raw, Err: err}
		}
	}
	return frame, nil
}

// EncodeFrame renders code followed by the JSON encoding of payload.
// A nil payload produces a bare code.
func EncodeFrame(code Code, payload any) (string, error) {
	prefix := strconv.Itoa(int(code))
	if payload == nil {
		return prefix, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return prefix + string(data), nil
}

// --- Requests (Client -> Server) ---

// Request is the body of an outbound application event.
type Request struct {
	Action string `json:"action"`
	UUID   string `json:"uuid"`
	Data   any    `json:"data,omitempty"`
}

// SayData is the data of a free-text query.
type SayData struct {
	Text string `json:"text"`
}

type authPayload struct {
	Token string `json:"token"`
}

// NewEventFrame encodes a 42 frame carrying [name, req].
func NewEventFrame(name string, req Request) (string, error) {
	return EncodeFrame(CodeEvent, []any{name, req})
}

// NewAuthFrame encodes the 40 frame answering an authentication challenge.
func NewAuthFrame(token string) string {
	// Marshalling a single string field cannot fail.
	s, _ := EncodeFrame(CodeAuth, authPayload{Token: token})
	return s
}

// --- Events (Server -> Client) ---

// Event is a decoded multiplexed application event.
type Event struct {
	Name   string
	Action string
	UUID   string
	Body   map[string]any
}

// Event returns the application event carried by a 42 frame. It reports
// false for any other code or for a payload that is not a
// [name, body] pair.
func (f *Frame) Event() (*Event, bool) {
	if f.Code != CodeEvent {
		return nil, false
	}
	arr, ok := f.Payload.([]any)
	if !ok || len(arr) != 2 {
		return nil, false
	}
	name, ok := arr[0].(string)
	if !ok {
		return nil, false
	}
	body, ok := arr[1].(map[string]any)
	if !ok {
		return nil, false
	}

	ev := &Event{Name: name, Body: body}
	ev.Action, _ = body["action"].(string)
	ev.UUID, _ = body["uuid"].(string)
	return ev, true
}

// Data returns the data envelope of the event, or nil.
func (e *Event) Data() map[string]any {
	data, _ := e.Body["data"].(map[string]any)
	return data
}

// IsHelloUser returns true if this is the reply to a greeting.
func (e *Event) IsHelloUser() bool {
	return e.Name == EventHelloUser
}

// IsSearchResponse returns true if this is the reply to a free-text query.
func (e *Event) IsSearchResponse() bool {
	return e.Name == EventSearchResponse
}
