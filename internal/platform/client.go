package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client wraps the chat platform's REST API. All three calls are one-way
// from the controller's point of view: callers log failures and move on,
// they never surface them to the webhook caller.
type Client struct {
	baseURL string
	secret  string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, secret string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// SendMessage pushes a message into the conversation on behalf of the bot.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) error {
	return c.post(ctx, "/v1/messages", map[string]any{
		"chat_id": conversationID,
		"text":    text,
	})
}

// SetTyping toggles the bot's typing indicator in the conversation.
func (c *Client) SetTyping(ctx context.Context, conversationID string, typing bool) error {
	return c.post(ctx, "/v1/typing", map[string]any{
		"chat_id": conversationID,
		"typing":  typing,
	})
}

// Transfer reassigns the conversation to the given operator.
func (c *Client) Transfer(ctx context.Context, conversationID, operatorID string) error {
	return c.post(ctx, "/v1/transfer", map[string]any{
		"chat_id":     conversationID,
		"operator_id": operatorID,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Platform-Secret", c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("platform error %s %d: %s", path, resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// SetTestBaseURL points the client at a test server.
func (c *Client) SetTestBaseURL(url string) {
	c.baseURL = url
}
