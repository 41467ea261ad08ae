// Package static implements an offline AI client with canned per-domain
// responses. It backs local development and tests, and serves as the
// degraded-mode fallback when no AI endpoint is configured. Its output is
// labeled so fallback content is distinguishable from genuine model output.
package static

import (
	"context"
	"fmt"
)

// OfflineLabel is appended to every canned response so users can tell
// fallback content apart from genuine AI output.
const OfflineLabel = "(generated offline)"

var domainResponses = map[string]string{
	"inventory": "Inventory levels reviewed. Restocking the flagged items would avoid stockouts next week.",
	"pricing":   "Pricing reviewed. A moderate increase on high-margin items keeps you competitive.",
	"clients":   "Client activity reviewed. A follow-up campaign for inactive clients is worth running.",
	"orders":    "Open orders reviewed. Two orders have been pending longer than usual.",
	"suppliers": "Supplier terms reviewed. Consolidating orders could improve your purchase conditions.",
}

const defaultResponse = "Request processed. No domain-specific guidance available."

// Client returns canned responses without any network dependency.
type Client struct{}

// NewClient creates an offline AI client.
func NewClient() *Client {
	return &Client{}
}

// Invoke returns the canned response for the domain, labeled as offline
// content. It never fails.
func (c *Client) Invoke(_ context.Context, domain, _ string, _ map[string]any) (string, error) {
	response, ok := domainResponses[domain]
	if !ok {
		response = defaultResponse
	}

	return fmt.Sprintf("%s %s", response, OfflineLabel), nil
}
