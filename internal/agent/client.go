// Package agent performs the outbound callbacks for @mention dispatch.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client posts mention payloads to agent callback URLs. Every call carries a
// hard timeout so a hung agent endpoint cannot hang the request that
// triggered it.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

type callbackPayload struct {
	Message string `json:"message"`
}

// Call posts {"message": content} to the callback URL and returns the raw
// response body. Any transport error, timeout, or non-2xx status is an
// error; the caller decides whether to surface it.
func (c *Client) Call(ctx context.Context, url, content string) (string, error) {
	body, err := json.Marshal(callbackPayload{Message: content})
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call agent: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read agent response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("agent returned status %d", resp.StatusCode)
	}
	return string(data), nil
}
