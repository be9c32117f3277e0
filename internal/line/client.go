package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultReplyEndpoint = "https://api.line.me/v2/bot/message/reply"

// Client is a minimal LINE Messaging API client: it only replies to events.
type Client struct {
	Token    string
	Endpoint string // overridable in tests
	HTTP     *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		Token:    token,
		Endpoint: defaultReplyEndpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

type textMessage struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *quickReply `json:"quickReply,omitempty"`
}

type quickReply struct {
	Items []quickReplyItem `json:"items"`
}

type quickReplyItem struct {
	Type   string        `json:"type"`
	Action messageAction `json:"action"`
}

type messageAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Reply sends one text message for a reply token. Shortcuts become tappable
// quick replies that send the shortcut text back as a message.
func (c *Client) Reply(ctx context.Context, replyToken, text string, shortcuts []string) error {
	msg := textMessage{Type: "text", Text: text}
	if len(shortcuts) > 0 {
		qr := &quickReply{}
		for _, s := range shortcuts {
			qr.Items = append(qr.Items, quickReplyItem{
				Type:   "action",
				Action: messageAction{Type: "message", Label: s, Text: s},
			})
		}
		msg.QuickReply = qr
	}

	payload, err := json.Marshal(map[string]any{
		"replyToken": replyToken,
		"messages":   []textMessage{msg},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("line reply failed: %s", resp.Status)
	}
	return nil
}
