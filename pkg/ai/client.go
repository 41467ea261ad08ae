// Package ai defines the contract for the external generative-AI collaborator.
// The orchestration core never constructs prompts beyond plain text and never
// parses model internals; it consumes the collaborator as send(prompt) -> text.
package ai

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the AI service could not be reached or errored.
// Callers translate it into their own failure condition (SendFailed for
// sessions, a failed result for bulk actions, a failed run for workflows).
var ErrUnavailable = errors.New("ai service unavailable")

// Client invokes the generative-AI service for one domain-scoped prompt.
// The contextData snapshot rides along with the request and is never
// persisted by this module.
type Client interface {
	Invoke(ctx context.Context, domain, prompt string, contextData map[string]any) (string, error)
}
