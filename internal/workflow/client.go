package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client relays chat queries to the workflow webhook (an n8n-style HTTP
// collaborator) and normalizes whatever shape it answers with.
type Client struct {
	URL    string
	Client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	ChatInput string `json:"chatInput"`
	SessionID string `json:"sessionId"`
}

// Reply is the normalized webhook answer.
type Reply struct {
	Message   string
	TableData []map[string]any
}

type webhookBody struct {
	TableData   []map[string]any `json:"tableData"`
	ChatMessage string           `json:"chatMessage"`
	Message     string           `json:"message"`
	Response    string           `json:"response"`
}

func (b webhookBody) normalize(raw []byte) Reply {
	msg := b.ChatMessage
	if msg == "" {
		msg = b.Message
	}
	if msg == "" {
		msg = b.Response
	}
	if msg == "" {
		msg = string(raw)
	}
	table := b.TableData
	if table == nil {
		table = []map[string]any{}
	}
	return Reply{Message: msg, TableData: table}
}

// Ask posts the user message to the webhook. Transport failures return an
// error; a non-2xx status degrades to a canned apology so the exchange can
// still be logged, matching the dashboard's original behavior.
func (c *Client) Ask(ctx context.Context, sessionID, userMessage string) (Reply, error) {
	if c.Client == nil {
		return Reply{}, errors.New("workflow: http client is nil")
	}

	b, err := json.Marshal(chatRequest{ChatInput: userMessage, SessionID: sessionID})
	if err != nil {
		return Reply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Reply{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reply{
			Message:   fmt.Sprintf("Sorry, an error occurred while contacting the workflow. Status: %d", resp.StatusCode),
			TableData: []map[string]any{},
		}, nil
	}

	return parseReply(raw), nil
}

// parseReply accepts either a single object or a non-empty array whose first
// element is the object; anything else falls back to the raw body text.
func parseReply(raw []byte) Reply {
	var obj webhookBody
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.normalize(raw)
	}

	var list []webhookBody
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].normalize(raw)
	}

	return Reply{Message: string(raw), TableData: []map[string]any{}}
}
