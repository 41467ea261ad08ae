// Package httpclient implements the AI collaborator over a plain HTTP
// completion endpoint.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/adviso/adviso/pkg/ai"
)

const defaultTimeout = 60 * time.Second

type invokeRequest struct {
	Domain      string         `json:"domain"`
	Prompt      string         `json:"prompt"`
	ContextData map[string]any `json:"context_data,omitempty"`
}

type invokeResponse struct {
	Text string `json:"text"`
}

// Client posts prompts to a completion endpoint and returns the raw text.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an HTTP-backed AI client for the given endpoint.
func NewClient(endpoint string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("module", "ai_http_client"),
	}
}

// Invoke sends one prompt and returns the assistant text. Any transport or
// non-2xx failure surfaces as ai.ErrUnavailable so callers can apply their
// own failure semantics.
func (c *Client) Invoke(ctx context.Context, domain, prompt string, contextData map[string]any) (string, error) {
	body, err := json.Marshal(invokeRequest{
		Domain:      domain,
		Prompt:      prompt,
		ContextData: contextData,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode ai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build ai request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "AI invocation failed", "domain", domain, "error", err)

		return "", fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.ErrorContext(ctx, "AI invocation returned error status",
			"domain", domain, "status", resp.StatusCode)

		return "", fmt.Errorf("%w: status %d", ai.ErrUnavailable, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
	}

	var decoded invokeResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		// Some upstreams answer with raw text instead of a JSON envelope.
		return string(payload), nil
	}

	return decoded.Text, nil
}
