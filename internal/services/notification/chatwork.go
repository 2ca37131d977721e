package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
)

// ChatworkNotifier posts messages to a Chatwork room
type ChatworkNotifier struct {
	baseURL  string
	apiToken string
	roomID   string
	client   *http.Client
	attempts int
	backoff  time.Duration
}

// NewChatworkNotifier creates a notifier for the configured room
func NewChatworkNotifier(cfg config.ChatworkConfig) *ChatworkNotifier {
	return &ChatworkNotifier{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		roomID:   cfg.RoomID,
		client:   &http.Client{Timeout: cfg.Timeout},
		attempts: 3,
		backoff:  time.Second,
	}
}

// SendExecutionResult implements Notifier
func (c *ChatworkNotifier) SendExecutionResult(ctx context.Context, title string, success bool, details string) error {
	status := "Executed"
	if !success {
		status = "Execution failed"
	}
	return c.SendMessage(ctx, fmt.Sprintf("[info][title]%s: %s[/title]%s[/info]", status, title, details))
}

// SendRollbackNotification implements Notifier
func (c *ChatworkNotifier) SendRollbackNotification(ctx context.Context, title, reason string) error {
	return c.SendMessage(ctx, fmt.Sprintf("[info][title]Rolled back: %s[/title]Reason: %s[/info]", title, reason))
}

// SendMessage posts body to the room, retrying transport errors and non-2xx
// responses up to three times.
func (c *ChatworkNotifier) SendMessage(ctx context.Context, body string) error {
	if c.apiToken == "" || c.roomID == "" {
		return fmt.Errorf("chatwork is not configured")
	}
	endpoint := fmt.Sprintf("%s/rooms/%s/messages", c.baseURL, c.roomID)
	form := url.Values{"body": {body}, "self_unread": {"0"}}.Encode()

	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * c.backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
		if err != nil {
			return fmt.Errorf("failed to build chatwork request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-ChatWorkToken", c.apiToken)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode/100 == 2 {
			return nil
		}
		lastErr = fmt.Errorf("chatwork status=%d", resp.StatusCode)
	}
	return lastErr
}
