package chatbot

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
)

// Message is a chatbot reply decoded from a multiplexed event.
type Message struct {
	Action string
	UUID   string
	// Content is HTML as sent by the service. It is not sanitised.
	Content        string
	Header         string
	Results        Results
	Clarifications []Clarification
}

// Results holds the result items attached to a reply.
type Results struct {
	Inside  []ResultItem
	Outside []ResultItem
}

// ResultItem is a single result entry. Link and Image are nil when the
// service did not send them.
type ResultItem struct {
	Type  string
	Label string
	Link  *url.URL
	Image *url.URL
}

// Clarification is a follow-up question the bot suggests.
type Clarification struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Content string `json:"content"`
}

// Buttons returns the outside results of type "button", in order.
func (m *Message) Buttons() []ResultItem {
	var buttons []ResultItem
	for _, item := range m.Results.Outside {
		if item.Type == "button" {
			buttons = append(buttons, item)
		}
	}
	return buttons
}

type wireResultItem struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Link  string `json:"link"`
	Image string `json:"image"`
}

type wireMessage struct {
	Content string `json:"content"`
	Header  string `json:"header"`
	Result  struct {
		Inside  []wireResultItem `json:"inside"`
		Outside []wireResultItem `json:"outside"`
	} `json:"result"`
	Clarifications []Clarification `json:"clarifications"`
}

// DecodeMessage decodes the data.message object of an event body.
func DecodeMessage(ev *Event) (*Message, error) {
	data := ev.Data()
	if data == nil {
		return nil, &DecodeError{Field: "data", Err: errors.New("missing data envelope")}
	}
	raw, ok := data["message"].(map[string]any)
	if !ok {
		return nil, &DecodeError{Field: "data.message", Err: errors.New("missing message object")}
	}

	var wm wireMessage
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &wm,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, &DecodeError{Field: "data.message", Err: err}
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &DecodeError{Field: "data.message", Err: err}
	}

	inside, err := convertResults("result.inside", wm.Result.Inside)
	if err != nil {
		return nil, err
	}
	outside, err := convertResults("result.outside", wm.Result.Outside)
	if err != nil {
		return nil, err
	}

	clarifications := wm.Clarifications
	if clarifications == nil {
		clarifications = []Clarification{}
	}

	return &Message{
		Action:         ev.Name,
		UUID:           ev.UUID,
		Content:        wm.Content,
		Header:         wm.Header,
		Results:        Results{Inside: inside, Outside: outside},
		Clarifications: clarifications,
	}, nil
}

func convertResults(field string, in []wireResultItem) ([]ResultItem, error) {
	out := make([]ResultItem, 0, len(in))
	for i, r := range in {
		link, err := parseOptionalURL(r.Link)
		if err != nil {
			return nil, &DecodeError{Field: fmt.Sprintf("%s[%d].link", field, i), Err: err}
		}
		image, err := parseOptionalURL(r.Image)
		if err != nil {
			return nil, &DecodeError{Field: fmt.Sprintf("%s[%d].image", field, i), Err: err}
		}
		out = append(out, ResultItem{
			Type:  r.Type,
			Label: r.Label,
			Link:  link,
			Image: image,
		})
	}
	return out, nil
}

func parseOptionalURL(s string) (*url.URL, error) {
	if s == "" {
		return nil, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("url %q is not absolute", s)
	}
	return u, nil
}
